package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The scoring defaults were tuned on freight-forwarder shipper datasets and
// are deliberately conservative: they favor leaving a true duplicate split
// over merging two distinct shippers.
const (
	// DefaultNameThreshold is the minimum weighted name confidence (0-100
	// scale) for a pair to be considered a match. Shipper names are the
	// strongest signal in the data, so the bar is high.
	DefaultNameThreshold = 80.0

	// DefaultAddressThreshold is the minimum address confidence for a match.
	// Addresses in shipment manifests are noisy (floor numbers, districts,
	// phone fragments), so the bar is much lower than for names.
	DefaultAddressThreshold = 58.0

	// DefaultNameWeight amplifies the name score relative to the address
	// score in the combined similarity. Values above 1 express that a name
	// agreement is worth more than an address agreement.
	DefaultNameWeight = 1.3

	// DefaultFalsePositiveMargin is how far below the address threshold a
	// pair's address confidence must fall, with the name still agreeing,
	// before the pair is flagged as a suspected false positive. Pairs inside
	// the margin are simply non-matches.
	DefaultFalsePositiveMargin = 10.0

	// DefaultReviewCutoff is the combined-similarity floor below which an
	// accepted match is additionally routed to the manual review list.
	DefaultReviewCutoff = 68.0

	// DefaultDistanceThresholdMiles is the maximum great-circle distance
	// between two geocoded addresses for a pair to remain a match. Only
	// applied when geocoding is enabled and both coordinates resolved.
	DefaultDistanceThresholdMiles = 50.0

	// DefaultNameColumn is the input CSV column holding the shipper name.
	DefaultNameColumn = "shipper_name"

	// DefaultAddressColumn is the input CSV column holding the shipper
	// address. Manifests commonly concatenate the first few address lines
	// into one field.
	DefaultAddressColumn = "first3_addresses"

	// DefaultGeocodeUserAgent identifies shipdedup to the Nominatim service.
	// Nominatim's usage policy requires a descriptive User-Agent.
	DefaultGeocodeUserAgent = "shipdedup/1.0 (+https://github.com/freightlens/shipdedup)"

	// DefaultRefiner disables LLM pre-cleaning of raw records.
	DefaultRefiner = "none"

	// RefinerAnthropic enables LLM pre-cleaning through the Anthropic API.
	RefinerAnthropic = "anthropic"

	// AppName is the application name used for XDG directory paths.
	AppName = "shipdedup"
)

// Config holds all configuration options for a resolution run.
// This struct is populated from CLI flags and an optional .shipdedup file
// and passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ScoringConfig, OutputConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// InputFile is the path to the CSV file holding the shipper records.
	InputFile string

	// NameColumn is the CSV column read as the shipper name.
	NameColumn string

	// AddressColumn is the CSV column read as the shipper address.
	AddressColumn string

	// NameThreshold is the minimum weighted name confidence for a match,
	// on the 0-100 similarity scale.
	NameThreshold float64

	// AddressThreshold is the minimum address confidence for a match.
	AddressThreshold float64

	// NameWeight multiplies the name confidence before it is compared
	// against NameThreshold and folded into the combined similarity.
	NameWeight float64

	// FalsePositiveMargin is the gap below AddressThreshold that separates
	// plain non-matches from suspected false positives.
	FalsePositiveMargin float64

	// ReviewCutoff routes accepted matches whose combined similarity falls
	// below it into the review output alongside the suspects.
	ReviewCutoff float64

	// Workers is the number of goroutines evaluating record pairs.
	// Zero means one worker per CPU.
	Workers int

	// Geocode enables address geocoding and the distance veto.
	// Geocoding calls an external service and slows runs considerably,
	// so it is off by default.
	Geocode bool

	// DistanceThresholdMiles rejects matched pairs whose geocoded addresses
	// are further apart than this. Zero disables the veto even when
	// geocoding is enabled.
	DistanceThresholdMiles float64

	// GeocodeUserAgent is the User-Agent header sent to the geocoding
	// service. Nominatim rejects requests without a descriptive one.
	GeocodeUserAgent string

	// Refiner selects the optional LLM pre-cleaning of raw records before
	// standardization. Either "none" (default) or "anthropic".
	Refiner string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .shipdedup in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Profiles holds dataset-specific configuration loaded from the config
	// file. This is populated by LoadConfigFile and applied per input file.
	Profiles *File

	// OutputFile is where the deduplicated record CSV is written.
	// When empty, the output CSV is not produced.
	OutputFile string

	// ReviewFile is where the manual-review pair CSV is written.
	// When empty, review pairs appear only in the summary report.
	ReviewFile string

	// JSONReport enables JSON summary output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown summary output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the summary report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// When set, run results are saved for historical comparison.
	// Defaults to the XDG data directory (~/.local/share/shipdedup on Linux).
	DBDir string

	// SaveToDB indicates whether to persist run results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most scoring defaults are non-zero. This also serves
// as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		NameColumn:             DefaultNameColumn,
		AddressColumn:          DefaultAddressColumn,
		NameThreshold:          DefaultNameThreshold,
		AddressThreshold:       DefaultAddressThreshold,
		NameWeight:             DefaultNameWeight,
		FalsePositiveMargin:    DefaultFalsePositiveMargin,
		ReviewCutoff:           DefaultReviewCutoff,
		DistanceThresholdMiles: DefaultDistanceThresholdMiles,
		GeocodeUserAgent:       DefaultGeocodeUserAgent,
		Refiner:                DefaultRefiner,
	}
}

// XDGDataDir returns the XDG data directory for shipdedup.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/shipdedup
// On macOS: ~/Library/Application Support/shipdedup
// On Windows: %LOCALAPPDATA%\shipdedup
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for shipdedup.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for shipdedup.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any records are read.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have an input file to resolve
	if c.InputFile == "" {
		return ErrNoInput
	}

	// Thresholds live on the 0-100 similarity scale
	if c.NameThreshold < 0 || c.NameThreshold > 100 {
		return ErrInvalidNameThreshold
	}
	if c.AddressThreshold < 0 || c.AddressThreshold > 100 {
		return ErrInvalidAddressThreshold
	}
	if c.ReviewCutoff < 0 || c.ReviewCutoff > 100 {
		return ErrInvalidReviewCutoff
	}

	// A non-positive weight would erase or invert the name signal
	if c.NameWeight <= 0 {
		return ErrInvalidNameWeight
	}

	// Margin and distance must be non-negative; zero is a valid "disabled"
	if c.FalsePositiveMargin < 0 {
		return ErrInvalidMargin
	}
	if c.DistanceThresholdMiles < 0 {
		return ErrInvalidDistance
	}

	// Workers of zero means one per CPU; negative is meaningless
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Refiner != DefaultRefiner && c.Refiner != RefinerAnthropic {
		return ErrUnknownRefiner
	}

	return nil
}
