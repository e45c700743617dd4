package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoInput is returned when no input CSV file is specified.
	ErrNoInput = errors.New("no input specified: provide a CSV file of shipper records")

	// ErrInvalidNameThreshold is returned when the name threshold is outside
	// the 0-100 similarity scale.
	ErrInvalidNameThreshold = errors.New("invalid name threshold: must be between 0 and 100")

	// ErrInvalidAddressThreshold is returned when the address threshold is
	// outside the 0-100 similarity scale.
	ErrInvalidAddressThreshold = errors.New("invalid address threshold: must be between 0 and 100")

	// ErrInvalidReviewCutoff is returned when the review cutoff is outside
	// the 0-100 similarity scale.
	ErrInvalidReviewCutoff = errors.New("invalid review cutoff: must be between 0 and 100")

	// ErrInvalidNameWeight is returned when the name weight is not positive.
	// A zero or negative weight would erase the name signal entirely.
	ErrInvalidNameWeight = errors.New("invalid name weight: must be positive")

	// ErrInvalidMargin is returned when the false-positive margin is
	// negative. Use 0 to disable suspect flagging.
	ErrInvalidMargin = errors.New("invalid false positive margin: must be non-negative")

	// ErrInvalidDistance is returned when the distance threshold is
	// negative. Use 0 to disable the distance veto.
	ErrInvalidDistance = errors.New("invalid distance threshold: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is negative.
	// Use 0 to run one worker per CPU.
	ErrInvalidWorkers = errors.New("invalid workers: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownRefiner is returned when the refiner name is neither "none"
	// nor "anthropic".
	ErrUnknownRefiner = errors.New(`unknown refiner: must be "none" or "anthropic"`)
)
