package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/freightlens/shipdedup/internal/config"
	"github.com/freightlens/shipdedup/internal/database"
	"github.com/spf13/cobra"
)

// NewRunsCmd creates the runs command.
// This command inspects resolution history stored in the database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [dataset]",
		Short: "List and inspect past resolution runs",
		Long: `Runs displays resolution history saved by 'shipdedup resolve'.

Without arguments it lists every saved run, newest first. Passing a dataset
name limits the listing to runs of that dataset. Use --id to show a single
run in full, including its matched pairs and cluster assignment.

Examples:
  # List all saved runs
  shipdedup runs

  # List runs for one dataset
  shipdedup runs hk_shippers

  # Show a single run in full
  shipdedup runs --id 5

  # Machine-readable output
  shipdedup runs --json hk_shippers`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunsCmd,
	}

	cmd.Flags().Int64P("id", "i", 0,
		"Show one run in full by ID (use the plain listing to see IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, args []string) error {
	runID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var dataset string
	if len(args) > 0 {
		dataset = args[0]
	}

	// Use XDG data directory for database
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if runID > 0 {
		return showRun(ctx, db, runID, jsonOutput)
	}
	return listRuns(ctx, db, dataset, jsonOutput)
}

// listRuns prints the saved runs, newest first.
func listRuns(ctx context.Context, db *database.RunDB, dataset string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, dataset)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		if dataset != "" {
			fmt.Printf("No saved runs found for %s\n", dataset)
		} else {
			fmt.Println("No saved runs found in the database.")
		}
		fmt.Println("\nUse 'shipdedup resolve <input.csv>' to resolve a file and save a run.")
		return nil
	}

	fmt.Printf("Saved runs (%d):\n\n", len(runs))
	fmt.Printf("  %-6s  %-20s  %-24s  %s\n", "ID", "Date", "Dataset", "Summary")
	fmt.Println("  " + strings.Repeat("-", 78))

	for _, run := range runs {
		summary := fmt.Sprintf("%d records, %d matches, %d clusters",
			run.Metrics.Records, run.Metrics.Matches, run.Metrics.Clusters)
		if run.ErrorMessage != "" {
			summary = "ERROR - " + run.ErrorMessage
		}
		fmt.Printf("  %-6d  %-20s  %-24s  %s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Dataset,
			summary,
		)
	}

	fmt.Println("\nUse 'shipdedup runs --id <ID>' to see a run in full.")
	return nil
}

// showRun prints a single run in full, including matches and assignment.
func showRun(ctx context.Context, db *database.RunDB, id int64, jsonOutput bool) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %d not found (use 'shipdedup runs' to see available IDs)", id)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(run)
	}

	fmt.Printf("Run %d\n", run.ID)
	fmt.Printf("  Dataset:  %s\n", run.Dataset)
	fmt.Printf("  Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.ErrorMessage != "" {
		fmt.Printf("  Error:    %s\n", run.ErrorMessage)
	}

	m := run.Metrics
	fmt.Println("\nMetrics:")
	fmt.Printf("  Records:      %d\n", m.Records)
	fmt.Printf("  Comparisons:  %d\n", m.Comparisons)
	fmt.Printf("  Matches:      %d\n", m.Matches)
	fmt.Printf("  Clusters:     %d\n", m.Clusters)
	fmt.Printf("  Singletons:   %d\n", m.Singletons)
	fmt.Printf("  Suspects:     %d\n", m.SuspectPairs)
	fmt.Printf("  Elapsed:      %s\n", m.Elapsed)

	if len(run.Matches) > 0 {
		fmt.Printf("\nMatched pairs (%d):\n", len(run.Matches))
		for _, pair := range run.Matches {
			fmt.Printf("  #%d ↔ #%d  name %.2f  address %.2f  overall %.2f\n",
				pair.I, pair.J,
				pair.NameConfidence, pair.AddressConfidence, pair.OverallSimilarity)
		}
	}

	if len(run.Assignment) > 0 {
		fmt.Printf("\nCluster assignment (%d records):\n", len(run.Assignment))
		for i, cluster := range run.Assignment {
			fmt.Printf("  record %d -> cluster %d\n", i, cluster)
		}
	}

	return nil
}
