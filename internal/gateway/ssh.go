package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSH dials switches with password authentication. Host keys are not
// verified; fabric switches are reached over a management network.
type SSH struct{}

func NewSSH() *SSH { return &SSH{} }

func (g *SSH) Connect(ctx context.Context, target Target) (Session, error) {
	timeout := target.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	config := &ssh.ClientConfig{
		User: target.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(target.Password),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = target.Password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	addr := target.Addr(22)
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, classify(err)
	}
	deadline, _ := dialCtx.Deadline()
	_ = conn.SetDeadline(deadline)

	cConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, classify(err)
	}
	_ = conn.SetDeadline(time.Time{})

	return &sshSession{client: ssh.NewClient(cConn, chans, reqs)}, nil
}

type sshSession struct {
	client *ssh.Client
}

// Run opens one channel per command; channels multiplex over the shared
// connection so concurrent calls are safe.
func (s *sshSession) Run(ctx context.Context, command string) (string, string, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("%w: new session: %v", ErrTransport, err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- sess.Run(command) }()

	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		return "", "", fmt.Errorf("%w: %q: %v", ErrTransport, command, ctx.Err())
	case err := <-done:
		if err != nil {
			// Switch CLIs commonly exit non-zero with useful output; only a
			// missing exit status is a transport failure.
			if _, ok := err.(*ssh.ExitError); ok {
				return stdout.String(), stderr.String(), nil
			}
			return stdout.String(), stderr.String(), fmt.Errorf("%w: %q: %v", ErrTransport, command, err)
		}
		return stdout.String(), stderr.String(), nil
	}
}

func (s *sshSession) Close() error {
	return s.client.Close()
}
