package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/freightlens/shipdedup/internal/standardize"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	// Verify each default value explicitly
	// This serves as living documentation of the defaults
	t.Run("default NameThreshold is 80", func(t *testing.T) {
		t.Parallel()
		if cfg.NameThreshold != 80 {
			t.Errorf("expected NameThreshold to be 80, got %v", cfg.NameThreshold)
		}
	})

	t.Run("default AddressThreshold is 58", func(t *testing.T) {
		t.Parallel()
		if cfg.AddressThreshold != 58 {
			t.Errorf("expected AddressThreshold to be 58, got %v", cfg.AddressThreshold)
		}
	})

	t.Run("default NameWeight is 1.3", func(t *testing.T) {
		t.Parallel()
		if cfg.NameWeight != 1.3 {
			t.Errorf("expected NameWeight to be 1.3, got %v", cfg.NameWeight)
		}
	})

	t.Run("default FalsePositiveMargin is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.FalsePositiveMargin != 10 {
			t.Errorf("expected FalsePositiveMargin to be 10, got %v", cfg.FalsePositiveMargin)
		}
	})

	t.Run("default ReviewCutoff is 68", func(t *testing.T) {
		t.Parallel()
		if cfg.ReviewCutoff != 68 {
			t.Errorf("expected ReviewCutoff to be 68, got %v", cfg.ReviewCutoff)
		}
	})

	t.Run("default columns match shipment manifests", func(t *testing.T) {
		t.Parallel()
		if cfg.NameColumn != "shipper_name" {
			t.Errorf("expected NameColumn 'shipper_name', got %q", cfg.NameColumn)
		}
		if cfg.AddressColumn != "first3_addresses" {
			t.Errorf("expected AddressColumn 'first3_addresses', got %q", cfg.AddressColumn)
		}
	})

	t.Run("default Geocode is off", func(t *testing.T) {
		t.Parallel()
		if cfg.Geocode {
			t.Error("expected Geocode to be false")
		}
	})

	t.Run("default DistanceThresholdMiles is 50", func(t *testing.T) {
		t.Parallel()
		if cfg.DistanceThresholdMiles != 50 {
			t.Errorf("expected DistanceThresholdMiles to be 50, got %v", cfg.DistanceThresholdMiles)
		}
	})

	t.Run("default Refiner is none", func(t *testing.T) {
		t.Parallel()
		if cfg.Refiner != DefaultRefiner {
			t.Errorf("expected Refiner %q, got %q", DefaultRefiner, cfg.Refiner)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.InputFile = "shippers.csv"
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("missing input returns ErrNoInput", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.InputFile = ""

		err := cfg.Validate()
		if !errors.Is(err, ErrNoInput) {
			t.Errorf("expected ErrNoInput, got %v", err)
		}
	})

	t.Run("name threshold above 100 returns ErrInvalidNameThreshold", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.NameThreshold = 101

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidNameThreshold) {
			t.Errorf("expected ErrInvalidNameThreshold, got %v", err)
		}
	})

	t.Run("negative address threshold returns ErrInvalidAddressThreshold", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.AddressThreshold = -1

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidAddressThreshold) {
			t.Errorf("expected ErrInvalidAddressThreshold, got %v", err)
		}
	})

	t.Run("review cutoff above 100 returns ErrInvalidReviewCutoff", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ReviewCutoff = 100.5

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidReviewCutoff) {
			t.Errorf("expected ErrInvalidReviewCutoff, got %v", err)
		}
	})

	t.Run("zero name weight returns ErrInvalidNameWeight", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.NameWeight = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidNameWeight) {
			t.Errorf("expected ErrInvalidNameWeight, got %v", err)
		}
	})

	t.Run("negative margin returns ErrInvalidMargin", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.FalsePositiveMargin = -5

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidMargin) {
			t.Errorf("expected ErrInvalidMargin, got %v", err)
		}
	})

	t.Run("zero margin disables suspect flagging and is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.FalsePositiveMargin = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative distance returns ErrInvalidDistance", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.DistanceThresholdMiles = -10

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidDistance) {
			t.Errorf("expected ErrInvalidDistance, got %v", err)
		}
	})

	t.Run("negative workers returns ErrInvalidWorkers", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Workers = -1

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidWorkers) {
			t.Errorf("expected ErrInvalidWorkers, got %v", err)
		}
	})

	t.Run("zero workers means one per CPU and is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Workers = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("json and markdown both enabled returns ErrConflictingReportFormats", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true

		err := cfg.Validate()
		if !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("json only is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("unknown refiner returns ErrUnknownRefiner", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Refiner = "openai"

		err := cfg.Validate()
		if !errors.Is(err, ErrUnknownRefiner) {
			t.Errorf("expected ErrUnknownRefiner, got %v", err)
		}
	})

	t.Run("anthropic refiner is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Refiner = RefinerAnthropic

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestFileGetProfile tests the GetProfile method.
func TestFileGetProfile(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when dataset not found", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: Profile{
				NameThreshold: 85,
				NameColumn:    "consignor",
			},
			Datasets: map[string]Profile{},
		}

		p := file.GetProfile("unknown_dataset")
		if p.NameThreshold != 85 {
			t.Errorf("expected name threshold 85, got %v", p.NameThreshold)
		}
		if p.NameColumn != "consignor" {
			t.Errorf("expected default column, got %q", p.NameColumn)
		}
	})

	t.Run("dataset profile overrides defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: Profile{
				NameThreshold:    85,
				AddressThreshold: 60,
			},
			Datasets: map[string]Profile{
				"hk_shippers": {
					NameThreshold: 75,
				},
			},
		}

		p := file.GetProfile("hk_shippers")
		if p.NameThreshold != 75 {
			t.Errorf("expected name threshold 75, got %v", p.NameThreshold)
		}
		// Unset fields keep defaults
		if p.AddressThreshold != 60 {
			t.Errorf("expected address threshold 60, got %v", p.AddressThreshold)
		}
	})
}

// TestConfigApplyProfile tests overlaying a dataset profile onto a config.
func TestConfigApplyProfile(t *testing.T) {
	t.Parallel()

	t.Run("nil profiles is a no-op", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyProfile("anything")

		if cfg.NameThreshold != DefaultNameThreshold {
			t.Errorf("config changed without a profile file: %v", cfg.NameThreshold)
		}
	})

	t.Run("profile fields overlay global settings", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Profiles = &File{
			Datasets: map[string]Profile{
				"eu_manifest": {
					NameThreshold: 70,
					AddressColumn: "addr_lines",
				},
			},
		}

		cfg.ApplyProfile("eu_manifest")

		if cfg.NameThreshold != 70 {
			t.Errorf("expected name threshold 70, got %v", cfg.NameThreshold)
		}
		if cfg.AddressColumn != "addr_lines" {
			t.Errorf("expected address column override, got %q", cfg.AddressColumn)
		}
		// Fields the profile leaves out keep the config's values
		if cfg.AddressThreshold != DefaultAddressThreshold {
			t.Errorf("address threshold should be untouched, got %v", cfg.AddressThreshold)
		}
	})
}

// TestConfigRuleset tests per-dataset ruleset resolution.
func TestConfigRuleset(t *testing.T) {
	t.Parallel()

	t.Run("no profile file yields built-in rules", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		rs := cfg.Ruleset("any")

		if len(rs.CorporateSuffixes) == 0 {
			t.Error("expected built-in corporate suffixes")
		}
	})

	t.Run("profile ruleset replaces listed rule lists only", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Profiles = &File{
			Datasets: map[string]Profile{
				"eu_manifest": {
					Ruleset: standardize.Ruleset{
						RegionNoise: []string{"ROTTERDAM", "NETHERLANDS"},
					},
				},
			},
		}

		rs := cfg.Ruleset("eu_manifest")

		if len(rs.RegionNoise) != 2 || rs.RegionNoise[0] != "ROTTERDAM" {
			t.Errorf("expected profile region noise, got %v", rs.RegionNoise)
		}
		// Lists the profile does not mention keep their defaults
		if len(rs.StreetTypes) == 0 {
			t.Error("expected built-in street types to survive")
		}
	})
}

// TestLoadConfigFile tests loading dataset profiles from YAML.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.shipdedup")
		if err == nil {
			t.Fatal("expected error for non-existent file")
		}
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".shipdedup")

		content := `defaults:
  name_threshold: 85
datasets:
  hk_shippers:
    name_threshold: 75
    address_column: addr_lines
    ruleset:
      region_noise:
        - KOWLOON
        - TSIM SHA TSUI
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Defaults.NameThreshold != 85 {
			t.Errorf("expected default name threshold 85, got %v", cfg.Defaults.NameThreshold)
		}

		p, ok := cfg.Datasets["hk_shippers"]
		if !ok {
			t.Fatal("expected hk_shippers in datasets")
		}
		if p.NameThreshold != 75 {
			t.Errorf("expected dataset name threshold 75, got %v", p.NameThreshold)
		}
		if p.AddressColumn != "addr_lines" {
			t.Errorf("expected address column override, got %q", p.AddressColumn)
		}
		if len(p.Ruleset.RegionNoise) != 2 {
			t.Errorf("expected 2 region noise entries, got %d", len(p.Ruleset.RegionNoise))
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".shipdedup")

		content := `invalid: yaml: content: [}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Datasets map", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".shipdedup")

		content := `defaults:
  name_threshold: 85
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Datasets == nil {
			t.Error("expected Datasets map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "custom.yaml")

		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result := FindConfigFile(configPath)
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		result := FindConfigFile("/nonexistent/path/config.yaml")
		if result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("returns empty when no config found", func(_ *testing.T) {
		result := FindConfigFile("")
		// This may or may not find a config depending on the system
		// Just ensure it doesn't panic
		_ = result
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGDataDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		if XDGDataDir() == "" {
			t.Error("expected non-empty XDG data dir")
		}
	})

	t.Run("XDGConfigDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		if XDGConfigDir() == "" {
			t.Error("expected non-empty XDG config dir")
		}
	})

	t.Run("XDGCacheDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		if XDGCacheDir() == "" {
			t.Error("expected non-empty XDG cache dir")
		}
	})
}
