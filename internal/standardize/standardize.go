package standardize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// rule is one compiled (pattern, replacement) step of the chain.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Standardizer canonicalizes raw name and address text. It is safe for
// concurrent use: all state is immutable after construction.
type Standardizer struct {
	rules []rule

	// stripPunct removes the whitespace and punctuation left after the
	// token sort, producing the final compact key.
	stripPunct *regexp.Regexp
}

// New compiles a Standardizer from the given ruleset. Token lists are
// quoted before compilation, so arbitrary configured tokens are safe; only
// LocalePatterns are treated as raw regular expressions.
func New(rs Ruleset) (*Standardizer, error) {
	var rules []rule

	add := func(expr, replacement string) error {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("standardize: bad pattern %q: %w", expr, err)
		}
		rules = append(rules, rule{pattern: re, replacement: replacement})
		return nil
	}

	// 1. Corporate suffixes, stripped as whole words.
	if len(rs.CorporateSuffixes) > 0 {
		if err := add(wordAlternation(rs.CorporateSuffixes), ""); err != nil {
			return nil, err
		}
	}

	// 2. Locale-specific noise (floor markers, building codes).
	for _, p := range rs.LocalePatterns {
		if err := add(`\b(?:`+p+`)\b`, ""); err != nil {
			return nil, err
		}
	}

	// 3. Exact-phrase canonicalizations. These must precede the generic
	// street-type rule or the generic rule rewrites their street token first.
	for _, pr := range rs.PhraseRules {
		if err := add(phrasePattern(pr.Phrase), pr.Replacement); err != nil {
			return nil, err
		}
	}

	// 4. Street-type synonym family to one representative token.
	if len(rs.StreetTypes) > 0 {
		if err := add(wordAlternation(rs.StreetTypes), rs.StreetCanonical); err != nil {
			return nil, err
		}
	}

	// 5. Region and country noise.
	if len(rs.RegionNoise) > 0 {
		parts := make([]string, len(rs.RegionNoise))
		for i, tok := range rs.RegionNoise {
			parts[i] = flexPhrase(tok)
		}
		if err := add(`\b(?:`+strings.Join(parts, "|")+`)\b`, ""); err != nil {
			return nil, err
		}
	}

	// 6. PO BOX variants to one token.
	if err := add(`\bP\.?O\.?\s?BOX\b`, "POBOX"); err != nil {
		return nil, err
	}

	// 7. Contact-method noise.
	if len(rs.ContactNoise) > 0 {
		if err := add(wordAlternation(rs.ContactNoise), ""); err != nil {
			return nil, err
		}
	}

	// 8. Single-character tokens, artifacts of the strips above.
	if err := add(`\b\w\b`, ""); err != nil {
		return nil, err
	}

	// 9. Long digit runs: suite and tracking numbers, not postal codes.
	minRun := rs.MinDigitRun
	if minRun <= 0 {
		minRun = DefaultRuleset().MinDigitRun
	}
	if err := add(fmt.Sprintf(`\d{%d,}`, minRun), ""); err != nil {
		return nil, err
	}

	return &Standardizer{
		rules:      rules,
		stripPunct: regexp.MustCompile(`[\s,.-]`),
	}, nil
}

// MustNew is New for rulesets known to be valid, such as the defaults.
func MustNew(rs Ruleset) *Standardizer {
	s, err := New(rs)
	if err != nil {
		panic(err)
	}
	return s
}

// Standardize returns the canonical comparable key for raw text. It is a
// pure function: the same input always yields the same output. Blank input
// yields the empty string, which the match decider treats as never-matching.
func (s *Standardizer) Standardize(raw string) string {
	// Transliterate to ASCII before upper-casing so accented variants of
	// the configured tokens still match as whole words.
	text := strings.ToUpper(unidecode.Unidecode(raw))

	for _, r := range s.rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}

	// Sort tokens so the key is invariant to word order, then compact.
	tokens := strings.Fields(text)
	sort.Strings(tokens)
	text = strings.Join(tokens, " ")

	return s.stripPunct.ReplaceAllString(text, "")
}

// Record standardizes both fields of a raw (name, address) pair.
func (s *Standardizer) Record(name, address string) (stdName, stdAddress string) {
	return s.Standardize(name), s.Standardize(address)
}

// wordAlternation builds a whole-word alternation for literal tokens.
func wordAlternation(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	return `\b(?:` + strings.Join(quoted, "|") + `)\b`
}

// phrasePattern builds a whole-word pattern for an exact phrase with
// optional whitespace between its words.
func phrasePattern(phrase string) string {
	return `\b` + flexPhrase(phrase) + `\b`
}

// flexPhrase quotes a token and makes interior spaces optional, so
// "HONG KONG" also matches "HONGKONG".
func flexPhrase(tok string) string {
	words := strings.Fields(tok)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s?`)
}
