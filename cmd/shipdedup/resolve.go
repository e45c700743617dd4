package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/freightlens/shipdedup/internal/config"
	"github.com/freightlens/shipdedup/internal/database"
	"github.com/freightlens/shipdedup/internal/geocode"
	"github.com/freightlens/shipdedup/internal/log"
	"github.com/freightlens/shipdedup/internal/model"
	"github.com/freightlens/shipdedup/internal/pipeline"
	"github.com/freightlens/shipdedup/internal/refine"
	"github.com/freightlens/shipdedup/internal/report"
	"github.com/freightlens/shipdedup/internal/source"
	"github.com/spf13/cobra"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <input.csv> [input2.csv ...]",
		Short: "Resolve duplicate shipper records in a CSV file",
		Long: `Resolve reads shipper records from a CSV file and groups duplicates.

Each record's name and address are standardized, every record pair is scored
with weighted token-sort similarity, and matching pairs are merged into
clusters. The results are written as:
- an output CSV with per-record cluster assignments and confidences
- a review CSV listing pairs that need a human decision
- a run summary (text, --json, or --markdown)

Examples:
  # Resolve a single file with defaults
  shipdedup resolve shippers.csv

  # Custom columns and thresholds
  shipdedup resolve --name-column company --address-column addr \
    --name-threshold 85 shippers.csv

  # Enable geocoding with a 50 mile distance veto
  shipdedup resolve --geocode shippers.csv

  # Pre-clean noisy text with the Anthropic refiner
  # (requires ANTHROPIC_API_KEY in the environment)
  shipdedup resolve --refiner anthropic shippers.csv

  # Markdown summary written to a file, no database row
  shipdedup resolve --markdown --output summary.md --no-save shippers.csv

Configuration file (.shipdedup) example:
  datasets:
    hk_shippers:
      address_threshold: 60
      ruleset:
        region_noise: ["KOWLOON", "HONG KONG", "HK"]`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResolveCmd,
	}

	// Input column flags
	cmd.Flags().String("name-column", config.DefaultNameColumn,
		"CSV column holding the shipper name")
	cmd.Flags().String("address-column", config.DefaultAddressColumn,
		"CSV column holding the shipper address")

	// Scoring flags
	cmd.Flags().Float64("name-threshold", config.DefaultNameThreshold,
		"Minimum weighted name confidence for a match (0-100)")
	cmd.Flags().Float64("address-threshold", config.DefaultAddressThreshold,
		"Minimum address confidence for a match (0-100)")
	cmd.Flags().Float64("name-weight", config.DefaultNameWeight,
		"Weight multiplying the name confidence")
	cmd.Flags().Float64("margin", config.DefaultFalsePositiveMargin,
		"Address gap below the threshold that flags a suspect false positive")
	cmd.Flags().Float64("review-cutoff", config.DefaultReviewCutoff,
		"Matches with overall similarity below this go to the review report")
	cmd.Flags().IntP("workers", "w", 0,
		"Number of evaluation workers (0 = one per CPU)")

	// Enrichment flags
	cmd.Flags().BoolP("geocode", "g", false,
		"Geocode addresses and veto matches further apart than --distance")
	cmd.Flags().Float64("distance", config.DefaultDistanceThresholdMiles,
		"Distance veto in miles (only with --geocode, 0 disables)")
	cmd.Flags().StringP("refiner", "r", config.DefaultRefiner,
		"LLM text refiner: none or anthropic")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .shipdedup in current or home directory)")

	// Batch flag
	cmd.Flags().IntP("batch", "b", 1,
		"Number of input files resolved concurrently")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write summary report to specified file path (creates directories if needed)")
	cmd.Flags().String("csv-out", "",
		"Output CSV path (default: <input>_resolved.csv)")
	cmd.Flags().String("review-out", "",
		"Review CSV path (default: <input>_review.csv)")

	// Persistence flag
	cmd.Flags().Bool("no-save", false,
		"Do not save the run to the history database")

	return cmd
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	batch, err := cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}

	// Set up structured logging with credential redaction
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runResolve(ctx, cfg, args, batch, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.InputFile = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.NameColumn, err = cmd.Flags().GetString("name-column")
	if err != nil {
		return nil, err
	}
	cfg.AddressColumn, err = cmd.Flags().GetString("address-column")
	if err != nil {
		return nil, err
	}

	cfg.NameThreshold, err = cmd.Flags().GetFloat64("name-threshold")
	if err != nil {
		return nil, err
	}
	cfg.AddressThreshold, err = cmd.Flags().GetFloat64("address-threshold")
	if err != nil {
		return nil, err
	}
	cfg.NameWeight, err = cmd.Flags().GetFloat64("name-weight")
	if err != nil {
		return nil, err
	}
	cfg.FalsePositiveMargin, err = cmd.Flags().GetFloat64("margin")
	if err != nil {
		return nil, err
	}
	cfg.ReviewCutoff, err = cmd.Flags().GetFloat64("review-cutoff")
	if err != nil {
		return nil, err
	}
	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Geocode, err = cmd.Flags().GetBool("geocode")
	if err != nil {
		return nil, err
	}
	cfg.DistanceThresholdMiles, err = cmd.Flags().GetFloat64("distance")
	if err != nil {
		return nil, err
	}
	cfg.Refiner, err = cmd.Flags().GetString("refiner")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load dataset profiles from the config file.
	// If the user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	} else {
		cfg.Profiles = &config.File{
			Datasets: make(map[string]config.Profile),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.OutputFile, err = cmd.Flags().GetString("csv-out")
	if err != nil {
		return nil, err
	}
	cfg.ReviewFile, err = cmd.Flags().GetString("review-out")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// datasetName derives the profile key for an input path: the base file name
// without its extension.
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// configForInput clones the shared config for one input file and overlays
// its dataset profile. Explicit CSV paths from flags only make sense for a
// single input, so multi-file runs always derive per-file paths.
func configForInput(cfg *config.Config, path string, multiFile bool) *config.Config {
	runCfg := *cfg
	runCfg.InputFile = path
	runCfg.ApplyProfile(datasetName(path))

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	if runCfg.OutputFile == "" || multiFile {
		runCfg.OutputFile = stem + "_resolved.csv"
	}
	if runCfg.ReviewFile == "" || multiFile {
		runCfg.ReviewFile = stem + "_review.csv"
	}

	return &runCfg
}

// runResolve executes the resolution over all input files.
func runResolve(ctx context.Context, cfg *config.Config, files []string, batch int, logger *slog.Logger) error {
	logger.Info("starting resolution",
		"files", files,
		"geocode", cfg.Geocode,
		"refiner", cfg.Refiner,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.RunDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Shared collaborators: one refiner and one geocoder for all files.
	refiner, err := buildRefiner(cfg)
	if err != nil {
		return err
	}
	geocoder := buildGeocoder(cfg, db)

	// Use batch processor for parallel resolution if multiple files
	if len(files) > 1 && batch > 1 {
		return runBatchResolve(ctx, cfg, files, batch, refiner, geocoder, db, logger)
	}

	return runSequentialResolve(ctx, cfg, files, refiner, geocoder, db, logger)
}

// buildRefiner constructs the configured text refiner, or nil for none.
// The Anthropic refiner reads its API key from the environment so the key
// never appears in shell history or process listings.
func buildRefiner(cfg *config.Config) (refine.Refiner, error) {
	if cfg.Refiner != config.RefinerAnthropic {
		return nil, nil
	}

	refiner, err := refine.NewAnthropicRefiner(os.Getenv("ANTHROPIC_API_KEY"))
	if err != nil {
		return nil, fmt.Errorf("anthropic refiner: %w (set ANTHROPIC_API_KEY)", err)
	}
	return refiner, nil
}

// buildGeocoder constructs the configured geocoder, or nil when geocoding
// is disabled. Lookups go through the database cache when a database is
// open, so repeated runs do not re-query Nominatim.
func buildGeocoder(cfg *config.Config, db *database.RunDB) geocode.Geocoder {
	if !cfg.Geocode {
		return nil
	}

	client := geocode.NewNominatimClient(cfg.GeocodeUserAgent)
	if db != nil {
		return geocode.NewCached(client, db.Geocache())
	}
	return client
}

// createPipelineForInput builds a pipeline for one input file with its
// dataset profile applied.
func createPipelineForInput(runCfg *config.Config, refiner refine.Refiner, geocoder geocode.Geocoder, logger *slog.Logger) (*pipeline.Pipeline, error) {
	deps := pipeline.Deps{
		Source:   source.NewCSVSource(runCfg.InputFile, runCfg.NameColumn, runCfg.AddressColumn),
		Refiner:  refiner,
		Geocoder: geocoder,
		Ruleset:  runCfg.Ruleset(datasetName(runCfg.InputFile)),
	}

	return pipeline.DefaultPipeline(runCfg, deps, pipeline.WithLogger(logger))
}

// runSequentialResolve resolves input files one at a time.
func runSequentialResolve(ctx context.Context, cfg *config.Config, files []string, refiner refine.Refiner, geocoder geocode.Geocoder, db *database.RunDB, logger *slog.Logger) error {
	multiFile := len(files) > 1

	for _, path := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		runCfg := configForInput(cfg, path, multiFile)

		p, err := createPipelineForInput(runCfg, refiner, geocoder, logger)
		if err != nil {
			return err
		}

		runReport := model.NewRunReport(path)

		fmt.Printf("Resolving %s...\n", path)
		startTime := time.Now()

		if err := p.Execute(ctx, runReport); err != nil {
			logger.Error("run failed", "file", path, "error", err)
			fmt.Fprintf(os.Stderr, "Resolution error for %s: %v\n", path, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Resolution completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := writeRunOutputs(runCfg, runReport); err != nil {
			logger.Error("output failed", "file", path, "error", err)
		}

		if err := saveRunReport(ctx, db, runReport, logger); err != nil {
			logger.Error("failed to save run", "file", path, "error", err)
		}
	}

	return nil
}

// runBatchResolve resolves multiple input files concurrently using
// BatchProcessor.
func runBatchResolve(ctx context.Context, cfg *config.Config, files []string, batch int, refiner refine.Refiner, geocoder geocode.Geocoder, db *database.RunDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch resolution of %d files (concurrency: %d)...\n\n",
		len(files), batch)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(path string) (*pipeline.Pipeline, error) {
			runCfg := configForInput(cfg, path, true)
			return createPipelineForInput(runCfg, refiner, geocoder, logger)
		},
		pipeline.WithConcurrency(batch),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, files, func(runReport *model.RunReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Resolution completed: %s\n", index+1, len(files), runReport.Dataset)

		runCfg := configForInput(cfg, runReport.Dataset, true)
		if err := writeRunOutputs(runCfg, runReport); err != nil {
			logger.Error("output failed", "file", runReport.Dataset, "error", err)
		}

		if err := saveRunReport(ctx, db, runReport, logger); err != nil {
			logger.Error("failed to save run", "file", runReport.Dataset, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch resolution completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// writeRunOutputs emits the summary report and both CSV outputs for a run.
func writeRunOutputs(cfg *config.Config, runReport *model.RunReport) error {
	if err := outputReport(cfg, runReport); err != nil {
		return err
	}

	if cfg.OutputFile != "" {
		if err := writeCSV(cfg.OutputFile, func(f *os.File) error {
			return report.NewOutputCSV(f, cfg.NameColumn, cfg.AddressColumn).Write(runReport)
		}); err != nil {
			return fmt.Errorf("output CSV: %w", err)
		}
	}

	if cfg.ReviewFile != "" {
		if err := writeCSV(cfg.ReviewFile, func(f *os.File) error {
			return report.NewReviewCSV(f).Write(runReport)
		}); err != nil {
			return fmt.Errorf("review CSV: %w", err)
		}
	}

	return nil
}

// writeCSV creates path (and any parent directories) and hands the open
// file to emit.
func writeCSV(path string, emit func(*os.File) error) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return emit(f)
}

// outputReport outputs the run summary in the requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report with matches and assignment)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(runReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(runReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(runReport)
	return err
}

// saveRunReport saves the run to the database if enabled.
// If db is nil, this function is a no-op.
func saveRunReport(ctx context.Context, db *database.RunDB, runReport *model.RunReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveRun(ctx, runReport)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to database", "id", id, "dataset", runReport.Dataset)
	return nil
}
