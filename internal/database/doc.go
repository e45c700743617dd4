// Package database provides SQLite-based storage for shipdedup.
//
// This package implements the RunDB, which stores:
//   - Resolution runs with their metrics for historical comparison
//   - Matched pairs and cluster assignments per run
//   - A geocode cache shared across runs
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
