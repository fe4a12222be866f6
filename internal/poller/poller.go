// Package poller drives crawl cycles and writes their results to the store.
package poller

import (
	"context"
	"time"

	"go-fcmap/internal/crawler"
	"go-fcmap/internal/metrics"
	"go-fcmap/internal/models"

	"github.com/sirupsen/logrus"
)

// DefaultOffsetHours is the civic offset stamped on stored records.
const DefaultOffsetHours = 8

// Store is the persistent side of a sync.
type Store interface {
	UpsertEndpoint(ctx context.Context, ep *models.Endpoint) (bool, error)
	UpsertZone(ctx context.Context, z *models.Zone) (bool, error)
}

// Cycler runs one crawl cycle over a switch list.
type Cycler interface {
	RunCycle(ctx context.Context, switches []crawler.Switch) crawler.CycleReport
}

// InventoryPoller refreshes the SNMP view of a switch.
type InventoryPoller interface {
	PollSwitch(ctx context.Context, host, community, vendor string) error
}

type Poller struct {
	Switches []crawler.Switch
	Cycler   Cycler
	Store    Store
	// Inventory is optional; switches without a community are skipped.
	Inventory InventoryPoller
	Interval  time.Duration
	Location  *time.Location
	Now       func() time.Time
	Log       logrus.FieldLogger
}

// SyncStats counts the outcome of one sync phase.
type SyncStats struct {
	Inserted int `json:"inserted" yaml:"inserted"`
	Replaced int `json:"replaced" yaml:"replaced"`
	Errors   int `json:"errors" yaml:"errors"`
}

func (p *Poller) log() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

// stamp returns the current time in the configured civic offset.
func (p *Poller) stamp() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	loc := p.Location
	if loc == nil {
		loc = time.FixedZone("UTC+8", DefaultOffsetHours*3600)
	}
	return now().In(loc)
}

// Sync upserts every endpoint by WWPN and every zone by name, in order, so
// the last duplicate of a cycle wins. Write failures are counted and
// logged; they never stop the phase.
func (p *Poller) Sync(ctx context.Context, res crawler.Result) SyncStats {
	var stats SyncStats
	log := p.log()

	record := func(collection string, created bool, err error) {
		outcome := "replaced"
		switch {
		case err != nil:
			outcome = "error"
			stats.Errors++
		case created:
			outcome = "inserted"
			stats.Inserted++
		default:
			stats.Replaced++
		}
		metrics.RecordsSynced.WithLabelValues(collection, outcome).Inc()
	}

	for i := range res.Endpoints {
		ep := res.Endpoints[i]
		ep.Timestamp = p.stamp()
		created, err := p.Store.UpsertEndpoint(ctx, &ep)
		if err != nil {
			log.WithError(err).WithField("wwpn", ep.WWPN).Error("endpoint not stored")
		}
		record("endpoints", created, err)
	}
	for i := range res.Zones {
		z := res.Zones[i]
		z.Timestamp = p.stamp()
		created, err := p.Store.UpsertZone(ctx, &z)
		if err != nil {
			log.WithError(err).WithField("zone", z.ZoneName).Error("zone not stored")
		}
		record("zones", created, err)
	}

	metrics.LastSync.Set(float64(time.Now().Unix()))
	log.WithFields(logrus.Fields{
		"inserted": stats.Inserted,
		"replaced": stats.Replaced,
		"errors":   stats.Errors,
	}).Info("sync complete")
	return stats
}

// RunOnce runs one crawl cycle, syncs its result and refreshes the SNMP
// inventory.
func (p *Poller) RunOnce(ctx context.Context) (crawler.CycleReport, SyncStats) {
	report := p.Cycler.RunCycle(ctx, p.Switches)
	stats := p.Sync(ctx, report.Result)
	p.pollInventory(ctx)
	return report, stats
}

func (p *Poller) pollInventory(ctx context.Context) {
	if p.Inventory == nil {
		return
	}
	for _, sw := range p.Switches {
		if sw.Community == "" || ctx.Err() != nil {
			continue
		}
		if err := p.Inventory.PollSwitch(ctx, sw.IP, sw.Community, sw.Vendor); err != nil {
			p.log().WithError(err).WithField("switch", sw.IP).Warn("inventory poll failed")
		}
	}
}

// Run repeats RunOnce, sleeping Interval between cycles, until ctx is
// cancelled. Cycles never overlap.
func (p *Poller) Run(ctx context.Context) {
	for {
		p.RunOnce(ctx)
		p.log().WithField("next_in", p.Interval.String()).Info("Polling cycle complete.")

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Interval):
		}
	}
}
