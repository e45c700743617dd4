package standardize

// PhraseRule canonicalizes an exact multi-word phrase. Phrase rules run
// before the generic street-type rule; a phrase like "HOI BUN ROAD" must be
// rewritten as a whole before "ROAD" alone is canonicalized, or the generic
// rule shadows it.
type PhraseRule struct {
	// Phrase is the target phrase. Spaces match optional whitespace, so
	// "HOI BUN ROAD" also covers "HOIBUN ROAD" and "HOI BUNROAD".
	Phrase string `yaml:"phrase"`

	// Replacement is the canonical form.
	Replacement string `yaml:"replacement"`
}

// Ruleset holds the configurable token lists the standardizer strips or
// canonicalizes. The defaults match the Hong Kong shipping dataset the tool
// was originally tuned on; other datasets override them via the config file.
type Ruleset struct {
	// CorporateSuffixes are legal-form tokens stripped as whole words.
	CorporateSuffixes []string `yaml:"corporate_suffixes"`

	// LocalePatterns are regular expressions for locale-specific noise such
	// as floor markers and building-name codes, stripped as whole words.
	LocalePatterns []string `yaml:"locale_patterns"`

	// PhraseRules are exact-phrase canonicalizations applied before the
	// generic street-type rule.
	PhraseRules []PhraseRule `yaml:"phrase_rules"`

	// StreetTypes are street-type synonyms canonicalized to StreetCanonical.
	StreetTypes []string `yaml:"street_types"`

	// StreetCanonical is the representative token for the street-type family.
	StreetCanonical string `yaml:"street_canonical"`

	// RegionNoise are city/region/country tokens that carry no
	// discriminating value for the dataset, stripped as whole words.
	// Spaces inside a token match optional whitespace.
	RegionNoise []string `yaml:"region_noise"`

	// ContactNoise are phone/fax label tokens, stripped as whole words.
	ContactNoise []string `yaml:"contact_noise"`

	// MinDigitRun is the length at or above which digit runs are stripped
	// as non-discriminating identifiers (suite and tracking numbers).
	MinDigitRun int `yaml:"min_digit_run"`
}

// DefaultRuleset returns the rule lists tuned for the original shipper
// dataset.
func DefaultRuleset() Ruleset {
	return Ruleset{
		CorporateSuffixes: []string{"LTD", "INTL", "CO", "LLC", "INC", "CORP"},
		LocalePatterns:    []string{`LEVEL\s?\d+`, `NEO\d*`},
		PhraseRules: []PhraseRule{
			{Phrase: "HOI BUN ROAD", Replacement: "BUN RD"},
		},
		StreetTypes: []string{
			"STREET", "ST", "AVENUE", "AVE", "ROAD", "RD",
			"BOULEVARD", "BLVD", "DRIVE", "DR",
		},
		StreetCanonical: "RD",
		RegionNoise: []string{
			"KWUN TONG", "KOWLOON", "HONG KONG", "CHINA", "HK", "CN",
		},
		ContactNoise: []string{"TEL/FAX", "PHONE", "FAX", "TEL"},
		MinDigitRun:  5,
	}
}

// Merge overlays non-empty fields of other onto the receiver and returns the
// result. Empty fields in other keep the receiver's values, so a config file
// only needs to list what it changes.
func (rs Ruleset) Merge(other Ruleset) Ruleset {
	out := rs
	if len(other.CorporateSuffixes) > 0 {
		out.CorporateSuffixes = other.CorporateSuffixes
	}
	if len(other.LocalePatterns) > 0 {
		out.LocalePatterns = other.LocalePatterns
	}
	if len(other.PhraseRules) > 0 {
		out.PhraseRules = other.PhraseRules
	}
	if len(other.StreetTypes) > 0 {
		out.StreetTypes = other.StreetTypes
	}
	if other.StreetCanonical != "" {
		out.StreetCanonical = other.StreetCanonical
	}
	if len(other.RegionNoise) > 0 {
		out.RegionNoise = other.RegionNoise
	}
	if len(other.ContactNoise) > 0 {
		out.ContactNoise = other.ContactNoise
	}
	if other.MinDigitRun > 0 {
		out.MinDigitRun = other.MinDigitRun
	}
	return out
}
