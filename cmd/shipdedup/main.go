// Package main provides the entry point for the shipdedup CLI.
//
// Shipdedup is a batch entity-resolution tool for shipper records.
// It reads a CSV of business names and addresses, finds duplicate entities
// through fuzzy matching, and groups them into clusters.
//
// Usage:
//
//	shipdedup resolve <input.csv>
//	shipdedup runs --dataset <input.csv>
//
// See --help for all available options.
package main

// main is the entry point for shipdedup.
func main() {
	Execute()
}
