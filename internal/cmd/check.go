package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/promhealth/health"
	"github.com/jonwraymond/promhealth/internal/daemon"
)

// ErrUnhealthy is returned by check when any probe is unhealthy.
var ErrUnhealthy = errors.New("one or more probes are unhealthy")

func newCheckCmd() *cobra.Command {
	var configFile string

	check := &cobra.Command{
		Use:   "check [name...]",
		Short: "Run probes once and print their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			// Async probes would report their initial state; run everything inline.
			for i := range cfg.Probes {
				cfg.Probes[i].Async.Period = 0
			}

			ctx := cmd.Context()
			d, err := daemon.New(ctx, cfg, Version)
			if err != nil {
				return err
			}
			defer func() { _ = d.Stop(context.Background()) }()

			samples, err := run(ctx, d.Registry(), args)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range samples {
				fmt.Fprintf(w, "%s\t%s\t%g\n", s.Name, s.Status, s.Value())
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !health.Overall(samples).IsHealthy() {
				return ErrUnhealthy
			}
			return nil
		},
	}

	check.Flags().StringVarP(&configFile, "config", "c", "", "The configuration filename")
	return check
}

func run(ctx context.Context, reg *health.Registry, names []string) ([]health.Sample, error) {
	if len(names) == 0 {
		return reg.Collect(ctx), nil
	}
	samples := make([]health.Sample, 0, len(names))
	for _, name := range names {
		status, err := reg.RunOnce(ctx, name)
		if err != nil {
			return nil, err
		}
		samples = append(samples, health.Sample{Name: name, Status: status})
	}
	return samples, nil
}
