// Package cmd implements the promhealthd command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/promhealth/internal/config"
)

// Version is set at build time.
var Version = "dev"

func loadConfig(filename string) (*config.Config, error) {
	if filename == "" {
		return config.New(), nil
	}
	return config.Load(filename)
}

// NewRootCmd returns the promhealthd root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "promhealthd",
		Short:        "Expose health probe results as Prometheus metrics",
		SilenceUsage: true,
	}
	cmd.SetOut(os.Stdout)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "promhealthd", Version)
		},
	}
}
