// Package command provides the routecost CLI. The root command starts
// the HTTP server; "plan" computes a single quote and prints it.
//
//	routecost [serve]
//	routecost plan --origin "MG Road, Bengaluru" --destination "T Nagar, Chennai" --weight 500
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"routecost/internal/config"
	"routecost/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "routecost",
	Short: "Route resolution and transport-cost estimation service",
	Long: `routecost resolves free-text origins and destinations to coordinates,
routes between them with retry and a great-circle fallback, suggests a
vehicle class and driver experience level, and prices the trip.

Configuration comes from ROUTECOST_* environment variables (a .env file
in the working directory is loaded first).`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, planCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	log.Setup(cfg.Log.Format, cfg.Log.Level)
	return cfg, nil
}
