// Package standardize turns raw entity names and addresses into canonical
// comparable keys.
//
// The pipeline is a fixed, ordered chain of textual rules: strip corporate
// suffixes and noise tokens, canonicalize street-type synonyms, collapse
// "PO BOX" variants, drop artifacts, then sort tokens and remove whitespace
// and punctuation. The result is a compact, order-insensitive key suitable
// for fuzzy comparison.
//
// Design decision: The rules are expressed as a declarative ordered list of
// (pattern, replacement) pairs compiled once at construction, rather than an
// inline regex chain. Order matters: specific multi-word phrase rules run
// before the generic street-type rule so they are not shadowed by it.
package standardize
