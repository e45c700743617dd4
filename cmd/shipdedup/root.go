// Package main provides the entry point for the shipdedup CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for shipdedup.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipdedup",
		Short: "Duplicate detection for shipper records",
		Long: `Shipdedup resolves duplicate shipper records in CSV files.

It standardizes business names and addresses, scores every record pair with
weighted fuzzy similarity, and groups matching records into clusters. Pairs
that look risky (strong name match, weak address match) are routed to a
manual-review report instead of being silently merged.

Every run is saved to a local SQLite database for history unless --no-save
is given.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
