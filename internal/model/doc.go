// Package model defines the core data structures used throughout shipdedup.
//
// This package contains the following main types:
//   - Record: A raw business-entity record as loaded from the input
//   - StandardizedRecord: The canonical comparable form of a Record
//   - PairScore: The similarity scores for one unordered record pair
//   - RunReport: The accumulating result of a resolution run
//   - Summary: A flat, serializable run summary for report output
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (match, pipeline, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
