// Package crawler runs one discovery job per configured switch and joins
// their results into a cycle report.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-fcmap/internal/gateway"
	"go-fcmap/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	ProtocolSSH    = "ssh"
	ProtocolTelnet = "telnet"
)

type Options struct {
	// Gateways maps a protocol name to its transport.
	Gateways map[string]gateway.Gateway
	// Crawlers maps a vendor name to its crawler.
	Crawlers       map[string]Crawler
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	// MaxSessions bounds concurrently running jobs; zero means unbounded.
	MaxSessions int
	Log         logrus.FieldLogger
}

type Orchestrator struct {
	opts Options
	log  logrus.FieldLogger
}

func New(opts Options) *Orchestrator {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{opts: opts, log: log}
}

// JobReport summarizes one job of a cycle.
type JobReport struct {
	Switch    string        `json:"switch" yaml:"switch"`
	Vendor    string        `json:"vendor" yaml:"vendor"`
	State     State         `json:"state" yaml:"state"`
	History   []State       `json:"history" yaml:"history"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Scopes    []string      `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	Endpoints int           `json:"endpoints" yaml:"endpoints"`
	Zones     int           `json:"zones" yaml:"zones"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// CycleReport is the joined outcome of every job of one cycle.
type CycleReport struct {
	ID       string      `json:"id" yaml:"id"`
	Started  time.Time   `json:"started" yaml:"started"`
	Finished time.Time   `json:"finished" yaml:"finished"`
	Jobs     []JobReport `json:"jobs" yaml:"jobs"`
	Result   Result      `json:"-" yaml:"-"`
}

// Failed counts jobs that ended in AuthFailed or Failed.
func (r CycleReport) Failed() int {
	n := 0
	for _, j := range r.Jobs {
		if j.State != Completed {
			n++
		}
	}
	return n
}

// RunCycle crawls every switch concurrently and returns once all jobs are
// terminal. Results are concatenated in configuration order.
func (o *Orchestrator) RunCycle(ctx context.Context, switches []Switch) CycleReport {
	report := CycleReport{ID: uuid.NewString(), Started: time.Now()}
	log := o.log.WithField("cycle", report.ID)
	log.WithField("switches", len(switches)).Info("crawl cycle started")

	jobs := make([]*Job, len(switches))
	results := make([]Result, len(switches))
	scopes := make([][]string, len(switches))

	var g errgroup.Group
	if o.opts.MaxSessions > 0 {
		g.SetLimit(o.opts.MaxSessions)
	}
	for i, sw := range switches {
		i := i // per-iteration copy (go directive is below 1.22)
		jobs[i] = NewJob(sw)
		g.Go(func() error {
			results[i], scopes[i] = o.runJob(ctx, jobs[i], log)
			return nil
		})
	}
	_ = g.Wait()

	for i, job := range jobs {
		report.Result.Append(results[i])
		jr := JobReport{
			Switch:    job.Switch.IP,
			Vendor:    job.Switch.Vendor,
			State:     job.State(),
			History:   job.History(),
			Scopes:    scopes[i],
			Endpoints: len(results[i].Endpoints),
			Zones:     len(results[i].Zones),
			Duration:  job.Duration(),
		}
		if err := job.Err(); err != nil {
			jr.Error = err.Error()
		}
		report.Jobs = append(report.Jobs, jr)
		metrics.JobsTotal.WithLabelValues(jr.Vendor, jr.State.String()).Inc()
	}
	report.Finished = time.Now()
	metrics.CycleDuration.Observe(report.Finished.Sub(report.Started).Seconds())

	log.WithFields(logrus.Fields{
		"endpoints": len(report.Result.Endpoints),
		"zones":     len(report.Result.Zones),
		"failed":    report.Failed(),
	}).Info("crawl cycle finished")
	return report
}

func (o *Orchestrator) runJob(ctx context.Context, job *Job, cycleLog logrus.FieldLogger) (Result, []string) {
	sw := job.Switch
	log := cycleLog.WithFields(logrus.Fields{"switch": sw.IP, "vendor": sw.Vendor})
	advance := func(st State) {
		if err := job.Advance(st); err != nil {
			log.WithError(err).Error("job state")
		}
	}
	fail := func(st State, err error) {
		if ferr := job.Fail(st, err); ferr != nil {
			log.WithError(ferr).Error("job state")
		}
	}

	advance(Connecting)
	c, ok := o.opts.Crawlers[sw.Vendor]
	if !ok {
		fail(Failed, fmt.Errorf("no crawler for vendor %q", sw.Vendor))
		log.Error("unsupported vendor")
		return Result{}, nil
	}
	protocol := sw.Protocol
	if protocol == "" {
		protocol = ProtocolSSH
	}
	gw, ok := o.opts.Gateways[protocol]
	if !ok {
		fail(Failed, fmt.Errorf("no gateway for protocol %q", protocol))
		log.Error("unsupported protocol")
		return Result{}, nil
	}

	sess, err := gw.Connect(ctx, gateway.Target{
		Host:     sw.IP,
		Port:     sw.Port,
		Username: sw.Username,
		Password: sw.Password,
		Timeout:  o.opts.ConnectTimeout,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrAuth) {
			fail(AuthFailed, err)
			log.WithError(err).Error("authentication failed")
		} else {
			fail(Failed, err)
			log.WithError(err).Error("connection failed")
		}
		return Result{}, nil
	}
	defer sess.Close()
	advance(Authenticated)

	t := Target{Switch: sw, Session: sess, Log: log, CommandTimeout: o.opts.CommandTimeout}
	scopes := []string{""}
	if e, ok := c.(Enumerator); ok {
		advance(Enumerating)
		scopes = e.Enumerate(ctx, t)
	}

	advance(Crawling)
	parts := make([]Result, len(scopes))
	var g errgroup.Group
	for i, scope := range scopes {
		i, scope := i, scope // per-iteration copy (go directive is below 1.22)
		g.Go(func() error {
			parts[i] = c.CrawlScope(ctx, t, scope)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		fail(Failed, err)
		log.WithError(err).Warn("crawl interrupted")
		return Result{}, scopes
	}

	var res Result
	for _, p := range parts {
		res.Append(p)
	}
	advance(Completed)
	log.WithFields(logrus.Fields{
		"scopes":    len(scopes),
		"endpoints": len(res.Endpoints),
		"zones":     len(res.Zones),
	}).Info("job completed")
	return res, scopes
}
