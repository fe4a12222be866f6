package main

import (
	"context"
	"fmt"

	"go-fcmap/internal/brocade"
	"go-fcmap/internal/cisco"
	"go-fcmap/internal/config"
	"go-fcmap/internal/crawler"
	"go-fcmap/internal/db"
	"go-fcmap/internal/gateway"
	"go-fcmap/internal/logger"
	"go-fcmap/internal/models"
	"go-fcmap/internal/oid"
	"go-fcmap/internal/poller"
	"go-fcmap/internal/snmp"
	"go-fcmap/internal/web"

	"github.com/sirupsen/logrus"
)

type store interface {
	poller.Store
	web.Store
	Close() error
}

func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.InitLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SNMP.OIDLabels != "" {
		if err := oid.Load(cfg.SNMP.OIDLabels); err != nil {
			return nil, nil, fmt.Errorf("load oid labels: %w", err)
		}
	}
	return cfg, log, nil
}

// openStore opens the configured store. The second result is nil when the
// store cannot keep the SNMP inventory.
func openStore(ctx context.Context, cfg config.StoreConfig) (store, snmp.Store, error) {
	switch cfg.Driver {
	case "mongo":
		s, err := db.OpenMongo(ctx, db.MongoConfig{
			URI:       cfg.Mongo.URI,
			Database:  cfg.Mongo.Database,
			Endpoints: cfg.Mongo.Endpoints,
			Zones:     cfg.Mongo.Zones,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		s, err := db.InitDB(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}

func newOrchestrator(cfg *config.Config, log logrus.FieldLogger) *crawler.Orchestrator {
	return crawler.New(crawler.Options{
		Gateways: map[string]gateway.Gateway{
			crawler.ProtocolSSH:    gateway.NewSSH(),
			crawler.ProtocolTelnet: gateway.NewTelnet(),
		},
		Crawlers: map[string]crawler.Crawler{
			models.VendorCisco:   cisco.New(),
			models.VendorBrocade: brocade.New(),
		},
		ConnectTimeout: cfg.Poll.ConnectTimeout,
		CommandTimeout: cfg.Poll.CommandTimeout,
		MaxSessions:    cfg.Poll.MaxSessions,
		Log:            log,
	})
}

func newPoller(cfg *config.Config, log logrus.FieldLogger, st poller.Store, inv snmp.Store) *poller.Poller {
	p := &poller.Poller{
		Switches: cfg.CrawlSwitches(),
		Cycler:   newOrchestrator(cfg, log),
		Store:    st,
		Interval: cfg.Poll.Interval,
		Location: cfg.Poll.Location(),
		Log:      log,
	}
	if inv != nil {
		p.Inventory = &snmp.Poller{
			Walker: snmp.Client{Timeout: cfg.SNMP.Timeout, Retries: cfg.SNMP.Retries},
			Store:  inv,
			Log:    log,
		}
	}
	return p
}
