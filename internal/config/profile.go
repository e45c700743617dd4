package config

import "github.com/freightlens/shipdedup/internal/standardize"

// Profile holds dataset-specific configuration for a single input file.
// This allows tuning thresholds and standardization rules per data source,
// since manifests from different forwarders carry different noise.
//
// Zero values mean "use the global setting". A profile therefore cannot
// set a threshold to exactly zero; in practice a zero threshold is never
// useful for real data.
type Profile struct {
	// NameColumn overrides the CSV column read as the shipper name.
	NameColumn string `yaml:"name_column,omitempty"`

	// AddressColumn overrides the CSV column read as the shipper address.
	AddressColumn string `yaml:"address_column,omitempty"`

	// NameThreshold overrides the global name threshold for this dataset.
	NameThreshold float64 `yaml:"name_threshold,omitempty"`

	// AddressThreshold overrides the global address threshold.
	AddressThreshold float64 `yaml:"address_threshold,omitempty"`

	// NameWeight overrides the global name weight.
	NameWeight float64 `yaml:"name_weight,omitempty"`

	// ReviewCutoff overrides the global review cutoff.
	ReviewCutoff float64 `yaml:"review_cutoff,omitempty"`

	// Ruleset overrides built-in standardization rule lists for this
	// dataset. Only the lists a profile names are replaced; the rest keep
	// their defaults. This lets a profile teach the standardizer region
	// names or street types specific to one forwarder's data.
	Ruleset standardize.Ruleset `yaml:"ruleset,omitempty"`
}

// File represents the structure of the .shipdedup configuration file.
type File struct {
	// Datasets maps dataset names to their specific configurations.
	// Keys are matched against the input file's base name without the
	// extension (e.g., "hk_shippers" for hk_shippers.csv).
	Datasets map[string]Profile `yaml:"datasets,omitempty"`

	// Defaults contains profile settings applied to all datasets unless
	// overridden in the dataset-specific profile.
	Defaults Profile `yaml:"defaults,omitempty"`
}

// GetProfile returns the configuration for a specific dataset.
// It merges the dataset-specific profile with the file-level defaults.
func (cf *File) GetProfile(dataset string) Profile {
	// Start with defaults
	result := cf.Defaults

	// Override with dataset-specific configuration if present
	if p, ok := cf.Datasets[dataset]; ok {
		if p.NameColumn != "" {
			result.NameColumn = p.NameColumn
		}
		if p.AddressColumn != "" {
			result.AddressColumn = p.AddressColumn
		}
		if p.NameThreshold != 0 {
			result.NameThreshold = p.NameThreshold
		}
		if p.AddressThreshold != 0 {
			result.AddressThreshold = p.AddressThreshold
		}
		if p.NameWeight != 0 {
			result.NameWeight = p.NameWeight
		}
		if p.ReviewCutoff != 0 {
			result.ReviewCutoff = p.ReviewCutoff
		}
		result.Ruleset = result.Ruleset.Merge(p.Ruleset)
	}

	return result
}

// ApplyProfile overlays the profile for the named dataset onto the config.
// It is a no-op when no configuration file was loaded.
func (c *Config) ApplyProfile(dataset string) {
	if c.Profiles == nil {
		return
	}

	p := c.Profiles.GetProfile(dataset)
	if p.NameColumn != "" {
		c.NameColumn = p.NameColumn
	}
	if p.AddressColumn != "" {
		c.AddressColumn = p.AddressColumn
	}
	if p.NameThreshold != 0 {
		c.NameThreshold = p.NameThreshold
	}
	if p.AddressThreshold != 0 {
		c.AddressThreshold = p.AddressThreshold
	}
	if p.NameWeight != 0 {
		c.NameWeight = p.NameWeight
	}
	if p.ReviewCutoff != 0 {
		c.ReviewCutoff = p.ReviewCutoff
	}
}

// Ruleset returns the standardization ruleset for the named dataset:
// the built-in defaults overlaid with the file-level and dataset-level
// rule lists.
func (c *Config) Ruleset(dataset string) standardize.Ruleset {
	rs := standardize.DefaultRuleset()
	if c.Profiles == nil {
		return rs
	}
	return rs.Merge(c.Profiles.GetProfile(dataset).Ruleset)
}
