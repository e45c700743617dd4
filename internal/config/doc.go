// Package config provides configuration structures and utilities for
// shipdedup. It defines the scoring thresholds, input column mapping,
// and output preferences for a resolution run, plus per-dataset profiles
// loaded from the .shipdedup configuration file.
package config
