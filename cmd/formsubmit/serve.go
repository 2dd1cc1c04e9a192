package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsubmit/internal/app"
	"github.com/goliatone/go-formsubmit/internal/metrics"
	"github.com/goliatone/go-formsubmit/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve forms over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		forms, err := app.Forms(ctx, cfg)
		if err != nil {
			return err
		}
		action, err := app.Action(cfg, logger)
		if err != nil {
			return err
		}
		renderers, err := app.Renderers(cfg)
		if err != nil {
			return err
		}
		m := metrics.New()

		srv, err := server.New(forms, action,
			server.WithRenderers(renderers),
			server.WithControllerOptions(app.ControllerOptions(cfg, logger, m.Hooks())...),
			server.WithMetricsHandler(m.Handler()),
			server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
			server.WithLocale(cfg.Locale),
			server.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address override")
	rootCmd.AddCommand(serveCmd)
}
