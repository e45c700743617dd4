package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/freightlens/shipdedup/internal/model"
)

// RunDB provides SQLite-based storage for resolution runs and the geocode
// cache. It manages connection pooling and provides methods for CRUD
// operations.
//
// Design decision: We use a single database file for all datasets rather
// than one file per input. Runs are small (a summary row plus matched pairs
// and a cluster assignment), and one file makes "compare this week's run to
// last week's" a single query.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "shipdedup.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// mode=rw prevents creating new files; mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY during the bulk match insert
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- One row per resolution run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		metrics_json TEXT NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Matched pairs with their scores, per run
	CREATE TABLE IF NOT EXISTS matches (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		i INTEGER NOT NULL,
		j INTEGER NOT NULL,
		name_confidence REAL NOT NULL,
		address_confidence REAL NOT NULL,
		overall_similarity REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id);

	-- Cluster assignment per record ordinal, per run
	CREATE TABLE IF NOT EXISTS assignments (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		record_idx INTEGER NOT NULL,
		cluster_id INTEGER NOT NULL,
		PRIMARY KEY (run_id, record_idx)
	);

	-- Geocoding results keyed by standardized address. Shared across runs;
	-- lat/lon of 0 with known=0 records a lookup that found nothing.
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		known INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists a completed run: its summary row, matched pairs, and
// cluster assignment, in one transaction. It returns the run's database ID.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.RunReport) (int64, error) {
	metricsJSON, err := json.Marshal(report.Metrics)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize metrics: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (dataset, started_at, metrics_json, error) VALUES (?, ?, ?, ?)`,
		report.Dataset,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		string(metricsJSON),
		report.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	matchStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matches (run_id, i, j, name_confidence, address_confidence, overall_similarity)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer matchStmt.Close() //nolint:errcheck

	for _, p := range report.Matches {
		if _, err := matchStmt.ExecContext(ctx,
			runID, int(p.I), int(p.J),
			p.NameConfidence, p.AddressConfidence, p.OverallSimilarity,
		); err != nil {
			return 0, fmt.Errorf("failed to insert match: %w", err)
		}
	}

	assignStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (run_id, record_idx, cluster_id) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare assignment insert: %w", err)
	}
	defer assignStmt.Close() //nolint:errcheck

	for idx, clusterID := range report.Assignment {
		if _, err := assignStmt.ExecContext(ctx, runID, idx, int(clusterID)); err != nil {
			return 0, fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying run history without loading matches and
// assignments.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Dataset is the input the run resolved.
	Dataset string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Metrics is the run summary.
	Metrics model.RunMetrics

	// ErrorMessage is non-empty when the run failed partway.
	ErrorMessage string
}

// ListRuns returns metadata for all stored runs, newest first.
// When dataset is non-empty, only runs for that dataset are returned.
func (rdb *RunDB) ListRuns(ctx context.Context, dataset string) ([]RunMetadata, error) {
	query := `
	SELECT id, dataset, started_at, metrics_json, error
	FROM runs
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if dataset != "" {
		query += " AND dataset = ?"
		args = append(args, dataset)
	}

	query += " ORDER BY started_at DESC, id DESC"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt, metricsJSON string
		var errMsg sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Dataset, &startedAt, &metricsJSON, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		if errMsg.Valid {
			meta.ErrorMessage = errMsg.String
		}
		if err := json.Unmarshal([]byte(metricsJSON), &meta.Metrics); err != nil {
			// A malformed metrics blob still leaves the run listable
			meta.Metrics = model.RunMetrics{}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// StoredRun is a fully loaded run: its metadata plus matched pairs and
// cluster assignment.
type StoredRun struct {
	RunMetadata

	// Matches are the matched pairs with scores.
	Matches []model.PairScore

	// Assignment maps record ordinals to clusters.
	Assignment model.ClusterAssignment
}

// GetRun retrieves a run by its database ID, including matches and
// assignment. Returns nil without error when the run does not exist.
func (rdb *RunDB) GetRun(ctx context.Context, id int64) (*StoredRun, error) {
	var run StoredRun
	var startedAt, metricsJSON string
	var errMsg sql.NullString

	err := rdb.db.QueryRowContext(ctx,
		`SELECT id, dataset, started_at, metrics_json, error FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Dataset, &startedAt, &metricsJSON, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.StartedAt = parseTimestamp(startedAt)
	if errMsg.Valid {
		run.ErrorMessage = errMsg.String
	}
	if err := json.Unmarshal([]byte(metricsJSON), &run.Metrics); err != nil {
		return nil, fmt.Errorf("failed to parse metrics: %w", err)
	}

	rows, err := rdb.db.QueryContext(ctx,
		`SELECT i, j, name_confidence, address_confidence, overall_similarity
		 FROM matches WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.PairScore
		var i, j int
		if err := rows.Scan(&i, &j, &p.NameConfidence, &p.AddressConfidence, &p.OverallSimilarity); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		p.I = model.RecordID(i)
		p.J = model.RecordID(j)
		run.Matches = append(run.Matches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	arows, err := rdb.db.QueryContext(ctx,
		`SELECT record_idx, cluster_id FROM assignments WHERE run_id = ? ORDER BY record_idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	defer arows.Close()

	for arows.Next() {
		var idx, clusterID int
		if err := arows.Scan(&idx, &clusterID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		// record_idx is contiguous from zero by construction
		run.Assignment = append(run.Assignment, model.ClusterID(clusterID))
	}

	return &run, arows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	return time.Time{}
}
