// Package gateway opens authenticated command sessions on fabric switches.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAuth      = errors.New("authentication failed")
	ErrConnect   = errors.New("connection failed")
	ErrTransport = errors.New("transport error")
)

// Target describes one switch login.
type Target struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

func (t Target) Addr(defaultPort int) string {
	port := t.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", t.Host, port)
}

// Session runs commands against a connected switch. Implementations must be
// safe for concurrent Run calls.
type Session interface {
	Run(ctx context.Context, command string) (stdout, stderr string, err error)
	Close() error
}

// Gateway connects to switches.
type Gateway interface {
	Connect(ctx context.Context, target Target) (Session, error)
}

// classify maps a dial/handshake error onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unable to authenticate"),
		strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "login incorrect"),
		strings.Contains(msg, "authentication failed"):
		return fmt.Errorf("%w: %v", ErrAuth, err)
	default:
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}
}
