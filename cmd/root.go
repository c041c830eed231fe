// Package cmd defines and implements the CLI commands for the statuscheck executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statuscheck",
		Short: "Crawl a website and report the HTTP status of every link.",
		Long: `statuscheck crawls a website, prints one colored line per crawled URL and
finishes with a summary grouped by status code. Redirects and errors can be
written to a report file for later review.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(newScanCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "statuscheck:", err)
		os.Exit(1)
	}
}
