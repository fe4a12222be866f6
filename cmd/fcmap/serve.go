package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-fcmap/internal/web"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Crawl on an interval and serve lookups over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, inv, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		// Start background crawler
		p := newPoller(cfg, log, st, inv)
		go p.Run(ctx)

		app := web.NewApp(st, log)
		go func() {
			<-ctx.Done()
			_ = app.Shutdown()
		}()

		log.Infof("Server running at http://%s", cfg.Web.Addr())
		return app.Listen(cfg.Web.Addr())
	},
}
