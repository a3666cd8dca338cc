package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/promhealth/internal/daemon"
)

func newServeCmd() *cobra.Command {
	var configFile string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run probes and serve health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := daemon.New(ctx, cfg, Version)
			if err != nil {
				return err
			}
			if _, err := d.Start(); err != nil {
				_ = d.Stop(context.Background())
				return err
			}

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*cfg.Registry.ShutdownGrace)
			defer cancel()
			return d.Stop(shutdownCtx)
		},
	}

	serve.Flags().StringVarP(&configFile, "config", "c", "", "The configuration filename")
	return serve
}
