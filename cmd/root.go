// Package cmd defines and implements the CLI commands for the paidwatch
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debugMode bool
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paidwatch",
		Short: "Watches the MCSO PAID jail roster for configured names.",
		Long: `paidwatch polls the MCSO PAID (Public Access Inmate Data) results page,
extracts booking and release records, and sends a notification the first
time a record matching the configured watchlist appears.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; environment variables also apply)")
	cmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "enable debug output")

	cmd.AddCommand(newWatchCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
