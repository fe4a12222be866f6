package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go-fcmap/internal/crawler"
	"go-fcmap/internal/models"
	"go-fcmap/internal/poller"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type crawlReport struct {
	Cycle     crawler.CycleReport `json:"cycle" yaml:"cycle"`
	Sync      *poller.SyncStats   `json:"sync,omitempty" yaml:"sync,omitempty"`
	Endpoints []models.Endpoint   `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	Zones     []models.Zone       `json:"zones,omitempty" yaml:"zones,omitempty"`
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one crawl cycle and print its report",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		output, _ := cmd.Flags().GetString("output")
		records, _ := cmd.Flags().GetBool("records")
		if output != "json" && output != "yaml" {
			return fmt.Errorf("unsupported output format: %s", output)
		}

		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var report crawlReport
		if dryRun {
			report.Cycle = newOrchestrator(cfg, log).RunCycle(ctx, cfg.CrawlSwitches())
		} else {
			st, inv, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()
			cycle, stats := newPoller(cfg, log, st, inv).RunOnce(ctx)
			report.Cycle, report.Sync = cycle, &stats
		}
		if records {
			report.Endpoints = report.Cycle.Result.Endpoints
			report.Zones = report.Cycle.Result.Zones
		}
		return writeReport(cmd.OutOrStdout(), output, report)
	},
}

func writeReport(w io.Writer, format string, report crawlReport) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
