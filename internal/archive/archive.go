// Package archive is an optional, non-core SQLite-backed history of
// session snapshots and process_response decisions. It exists purely
// for CLI inspection/replay tooling (cmd/inspect, cmd/fixture-export,
// cmd/replay's --db mode) and is never imported by the engine or any
// other core decision package.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshot_archive (
	archive_row_id TEXT PRIMARY KEY,
	test_id        INTEGER NOT NULL,
	snapshot_json  TEXT NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS provenance_log (
	archive_row_id TEXT PRIMARY KEY,
	test_id        INTEGER NOT NULL,
	module_id      TEXT NOT NULL,
	item_id        INTEGER NOT NULL,
	correct        INTEGER NOT NULL,
	rt_seconds     REAL NOT NULL,
	should_stop    INTEGER NOT NULL,
	reason         TEXT,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshot_archive_test_id ON snapshot_archive(test_id);
CREATE INDEX IF NOT EXISTS idx_provenance_log_test_id ON provenance_log(test_id);
`

// Store manages the session snapshot and provenance history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB, e.g. for a caller sharing it
// with another local store.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SnapshotRow is one archived snapshot, tagged with its own archive
// row id (distinct from test_id, since a test can be archived many
// times over its lifetime).
type SnapshotRow struct {
	ArchiveRowID string
	TestID       int
	Snapshot     state.Snapshot
	CreatedAt    time.Time
}

// SaveSnapshot archives snap under a fresh archive row id.
func (s *Store) SaveSnapshot(testID int, snap state.Snapshot, createdAt time.Time) (string, error) {
	id := uuid.New().String()

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO snapshot_archive (archive_row_id, test_id, snapshot_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		id, testID, string(body), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

// ListSnapshots returns the most recent archived snapshots for testID,
// newest first.
func (s *Store) ListSnapshots(testID, limit int) ([]SnapshotRow, error) {
	rows, err := s.db.Query(
		`SELECT archive_row_id, test_id, snapshot_json, created_at
		 FROM snapshot_archive WHERE test_id = ? ORDER BY created_at DESC LIMIT ?`,
		testID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var r SnapshotRow
		var body, createdStr string
		if err := rows.Scan(&r.ArchiveRowID, &r.TestID, &body, &createdStr); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		if err := json.Unmarshal([]byte(body), &r.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSnapshot retrieves a single archived snapshot by its archive row
// id.
func (s *Store) GetSnapshot(archiveRowID string) (SnapshotRow, error) {
	var r SnapshotRow
	var body, createdStr string
	err := s.db.QueryRow(
		`SELECT archive_row_id, test_id, snapshot_json, created_at
		 FROM snapshot_archive WHERE archive_row_id = ?`, archiveRowID,
	).Scan(&r.ArchiveRowID, &r.TestID, &body, &createdStr)
	if err != nil {
		return SnapshotRow{}, fmt.Errorf("get snapshot %s: %w", archiveRowID, err)
	}
	if err := json.Unmarshal([]byte(body), &r.Snapshot); err != nil {
		return SnapshotRow{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return r, nil
}

// DecisionEntry is one process_response outcome recorded for audit.
type DecisionEntry struct {
	TestID     int
	ModuleID   string
	ItemID     int
	Correct    bool
	RTSeconds  float64
	ShouldStop bool
	Reason     string
	CreatedAt  time.Time
}

// LogDecision writes a provenance entry, tagged with its own archive
// row id.
func (s *Store) LogDecision(entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	id := uuid.New().String()

	correctInt := 0
	if entry.Correct {
		correctInt = 1
	}
	stopInt := 0
	if entry.ShouldStop {
		stopInt = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO provenance_log (archive_row_id, test_id, module_id, item_id, correct, rt_seconds, should_stop, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, entry.TestID, entry.ModuleID, entry.ItemID, correctInt, entry.RTSeconds, stopInt,
		nullIfEmpty(entry.Reason), entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// ListDecisions returns the full provenance log for testID in
// chronological order.
func (s *Store) ListDecisions(testID int) ([]DecisionEntry, error) {
	rows, err := s.db.Query(
		`SELECT test_id, module_id, item_id, correct, rt_seconds, should_stop, reason, created_at
		 FROM provenance_log WHERE test_id = ? ORDER BY created_at ASC`, testID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var correctInt, stopInt int
		var reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.TestID, &e.ModuleID, &e.ItemID, &correctInt, &e.RTSeconds, &stopInt, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision row: %w", err)
		}
		e.Correct = correctInt != 0
		e.ShouldStop = stopInt != 0
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
