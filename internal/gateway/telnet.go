package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ziutek/telnet"
)

var (
	loginPrompts    = []string{"login:", "Login:", "Username:", "username:"}
	passwordPrompts = []string{"Password:", "password:"}
	// Shell prompts end the output of a command. Brocade prompts look like
	// "sw1:FID128:admin> ", Cisco MDS prompts like "mds-a# ".
	shellPrompts = []string{"> ", "# "}
	// Rejections are whole phrases or a login prompt at the start of a line,
	// so banners such as "Last failed login: ..." or "Last login: ..." do not
	// count.
	loginFailures = []string{
		"Login incorrect", "Login failed", "Authentication failed",
		"Access denied", "Permission denied",
		"\nlogin:", "\nLogin:", "\nUsername:", "\nusername:",
	}
)

// indexReader is the part of *telnet.Conn used after the password is sent.
type indexReader interface {
	ReadUntilIndex(delims ...string) ([]byte, int, error)
}

// awaitShell reads until a shell prompt or a rejection, whichever comes
// first in the stream.
func awaitShell(r indexReader, target Target) error {
	delims := append(append([]string{}, shellPrompts...), loginFailures...)
	_, idx, err := r.ReadUntilIndex(delims...)
	if err != nil {
		return fmt.Errorf("%w: waiting for shell prompt: %v", ErrConnect, err)
	}
	if idx >= len(shellPrompts) {
		return fmt.Errorf("%w: %s rejected credentials for %s", ErrAuth, target.Host, target.Username)
	}
	return nil
}

// Telnet logs in over telnet for switches without SSH. Commands on one
// session are serialized because telnet carries a single interactive stream.
type Telnet struct {
	// StepTimeout bounds each prompt wait; zero uses the target timeout.
	StepTimeout time.Duration
}

func NewTelnet() *Telnet { return &Telnet{} }

func (g *Telnet) Connect(ctx context.Context, target Target) (Session, error) {
	timeout := target.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrConnect, context.DeadlineExceeded)
	}

	conn, err := telnet.DialTimeout("tcp", target.Addr(23), timeout)
	if err != nil {
		return nil, classify(err)
	}
	conn.SetUnixWriteMode(true)

	step := g.StepTimeout
	if step <= 0 {
		step = timeout
	}
	s := &telnetSession{conn: conn, step: step}
	if err := s.login(target); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

type telnetSession struct {
	mu   sync.Mutex
	conn *telnet.Conn
	step time.Duration
}

func (s *telnetSession) login(target Target) error {
	_ = s.conn.SetDeadline(time.Now().Add(s.step))
	if err := s.conn.SkipUntil(loginPrompts...); err != nil {
		return fmt.Errorf("%w: waiting for login prompt: %v", ErrConnect, err)
	}
	if err := s.sendLine(target.Username); err != nil {
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}
	if err := s.conn.SkipUntil(passwordPrompts...); err != nil {
		return fmt.Errorf("%w: waiting for password prompt: %v", ErrConnect, err)
	}
	if err := s.sendLine(target.Password); err != nil {
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}

	if err := awaitShell(s.conn, target); err != nil {
		return err
	}
	_ = s.conn.SetDeadline(time.Time{})
	return nil
}

func (s *telnetSession) sendLine(line string) error {
	_, err := s.conn.Write([]byte(line + "\n"))
	return err
}

// Run writes the command and reads until the next shell prompt. The echoed
// command line and the trailing prompt are stripped. Telnet merges stderr
// into stdout, so stderr is always empty.
func (s *telnetSession) Run(ctx context.Context, command string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(s.step)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetDeadline(deadline)
	defer s.conn.SetDeadline(time.Time{})

	if err := s.sendLine(command); err != nil {
		return "", "", fmt.Errorf("%w: %q: %v", ErrTransport, command, err)
	}
	raw, err := s.conn.ReadUntil(shellPrompts...)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q: %v", ErrTransport, command, err)
	}
	return trimEcho(string(raw), command), "", nil
}

func trimEcho(raw, command string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && strings.Contains(lines[0], command) {
		lines = lines[1:]
	}
	// the last line is the prompt that terminated the read
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func (s *telnetSession) Close() error {
	_ = s.sendLine("exit")
	return s.conn.Close()
}
