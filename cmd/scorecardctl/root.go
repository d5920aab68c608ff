package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
	actingUser string
)

var rootCmd = &cobra.Command{
	Use:   "scorecardctl",
	Short: "CLI for the scorecard server",
	Long: `scorecardctl manages scorecards, metrics, and recorded values against a
running scorecard server.

The acting user (sent as X-User-Id) defaults to the SCORECARD_USER
environment variable.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Scorecard server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&actingUser, "as", "", "Acting user id (default: from SCORECARD_USER env)")

	rootCmd.AddCommand(scorecardCmd)
	rootCmd.AddCommand(metricCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(healthCmd)
}

// resolvedUser returns the effective acting user id.
// Priority: --as flag > SCORECARD_USER env var > empty (anonymous).
func resolvedUser() string {
	if actingUser != "" {
		return actingUser
	}
	return os.Getenv("SCORECARD_USER")
}
