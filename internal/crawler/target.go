package crawler

import (
	"context"
	"strings"
	"time"

	"go-fcmap/internal/gateway"
	"go-fcmap/internal/models"

	"github.com/sirupsen/logrus"
)

// Switch is one configured crawl target.
type Switch struct {
	IP       string
	Username string
	Password string
	Vendor   string
	Protocol string
	Port     int
	// Community is the SNMP read community for inventory polling; empty
	// disables it.
	Community string
}

// Result is what one crawl scope (or a whole job) contributes to a cycle.
type Result struct {
	Endpoints []models.Endpoint
	Zones     []models.Zone
}

func (r *Result) Append(o Result) {
	r.Endpoints = append(r.Endpoints, o.Endpoints...)
	r.Zones = append(r.Zones, o.Zones...)
}

// Target is an open session on a configured switch, as handed to crawlers.
type Target struct {
	Switch         Switch
	Session        gateway.Session
	Log            logrus.FieldLogger
	CommandTimeout time.Duration
}

// Crawler discovers endpoints of one vendor within one fabric scope.
type Crawler interface {
	CrawlScope(ctx context.Context, t Target, scope string) Result
}

// Enumerator is implemented by crawlers whose switches host several
// virtual fabrics. Without it a job crawls the single empty scope.
type Enumerator interface {
	Enumerate(ctx context.Context, t Target) []string
}

var unsupportedMarkers = []string{
	"does not exist",
	"invalid command",
	"command not found",
	"permission denied",
	"rbac permission denied",
	"not supported",
	"syntax error",
}

// Output runs a command and returns its stdout. Any failure degrades to an
// empty string and is logged; it never aborts the caller's crawl.
func (t Target) Output(ctx context.Context, command string) string {
	log := t.Log.WithField("command", command)
	if t.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.CommandTimeout)
		defer cancel()
	}

	stdout, stderr, err := t.Session.Run(ctx, command)
	if err != nil {
		log.WithError(err).Warn("command failed")
		return ""
	}
	if strings.TrimSpace(stdout) == "" {
		if msg := strings.TrimSpace(stderr); msg != "" {
			log.WithField("stderr", msg).Warn("command returned no output")
		} else {
			log.Info("command returned no output")
		}
		return ""
	}
	if unsupported(stdout) {
		log.Info("command not available on this switch")
		return ""
	}
	return stdout
}

func unsupported(out string) bool {
	// only the head of the output carries the CLI's rejection message
	head := out
	if len(head) > 256 {
		head = head[:256]
	}
	head = strings.ToLower(head)
	for _, m := range unsupportedMarkers {
		if strings.Contains(head, m) {
			return true
		}
	}
	return false
}
