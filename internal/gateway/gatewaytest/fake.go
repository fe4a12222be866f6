// Package gatewaytest provides a scripted in-memory gateway for tests.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"go-fcmap/internal/gateway"
)

// Reply is the scripted answer to one command.
type Reply struct {
	Stdout string
	Stderr string
	Err    error
}

// Host scripts one switch.
type Host struct {
	// ConnectErr, when set, is returned by Connect.
	ConnectErr error
	Replies    map[string]Reply
}

// Gateway serves scripted hosts and records every command run.
type Gateway struct {
	mu    sync.Mutex
	Hosts map[string]*Host
	calls map[string][]string
}

func New() *Gateway {
	return &Gateway{Hosts: map[string]*Host{}, calls: map[string][]string{}}
}

// Script registers replies for a host, keyed by full command text.
func (g *Gateway) Script(host string, replies map[string]string) *Host {
	h := &Host{Replies: map[string]Reply{}}
	for cmd, out := range replies {
		h.Replies[cmd] = Reply{Stdout: out}
	}
	g.Hosts[host] = h
	return h
}

func (g *Gateway) Connect(ctx context.Context, target gateway.Target) (gateway.Session, error) {
	h, ok := g.Hosts[target.Host]
	if !ok {
		return nil, fmt.Errorf("%w: no route to %s", gateway.ErrConnect, target.Host)
	}
	if h.ConnectErr != nil {
		return nil, h.ConnectErr
	}
	return &session{g: g, host: target.Host, h: h}, nil
}

// Calls returns the commands run against host, in order.
func (g *Gateway) Calls(host string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls[host]...)
}

type session struct {
	g    *Gateway
	host string
	h    *Host
}

func (s *session) Run(ctx context.Context, command string) (string, string, error) {
	s.g.mu.Lock()
	s.g.calls[s.host] = append(s.g.calls[s.host], command)
	s.g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", "", fmt.Errorf("%w: %v", gateway.ErrTransport, err)
	}
	r, ok := s.h.Replies[command]
	if !ok {
		return "", "", nil
	}
	return r.Stdout, r.Stderr, r.Err
}

func (s *session) Close() error { return nil }
