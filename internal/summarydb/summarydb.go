// Package summarydb provides SQLite-backed durable storage for footprint
// summary tables. Unlike summarycache, which snapshots a whole table to a
// flat file, the database supports incremental per-body upserts, so a
// long-running driver can persist summaries as each body converges.
package summarydb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/mir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added updated_seq column for write ordering
const currentSchemaVersion = 1

const (
	estBottom = iota
	estExact
	estUnknown
)

// Store is a SQLite-backed footprint summary store.
// Uses WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	seq int64
}

// Open creates or opens a summary database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	store := &Store{db: db}
	if err := db.QueryRow("SELECT COALESCE(MAX(updated_seq), 0) FROM summaries").Scan(&store.seq); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read write sequence: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put upserts one body's summary. Later writes for the same body replace
// earlier ones.
func (s *Store) Put(ctx context.Context, id mir.BodyID, summary footprint.Footprint) error {
	unitsKind, unitsValue := encodeEstimate(summary.Units)
	cardKind, cardValue := encodeEstimate(summary.Cardinality)
	s.seq++

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (body, units_kind, units_value, card_kind, card_value, updated_seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(body) DO UPDATE SET
			units_kind  = excluded.units_kind,
			units_value = excluded.units_value,
			card_kind   = excluded.card_kind,
			card_value  = excluded.card_value,
			updated_seq = excluded.updated_seq
	`,
		uint32(id), unitsKind, unitsValue, cardKind, cardValue, s.seq,
	)
	if err != nil {
		return fmt.Errorf("put summary for body %d: %w", id, err)
	}
	return nil
}

// Get reads one body's summary. The second return reports presence.
func (s *Store) Get(ctx context.Context, id mir.BodyID) (footprint.Footprint, bool, error) {
	var unitsKind, cardKind int
	var unitsValue, cardValue uint32
	err := s.db.QueryRowContext(ctx, `
		SELECT units_kind, units_value, card_kind, card_value
		FROM summaries WHERE body = ?
	`, uint32(id)).Scan(&unitsKind, &unitsValue, &cardKind, &cardValue)
	if err == sql.ErrNoRows {
		return footprint.Footprint{}, false, nil
	}
	if err != nil {
		return footprint.Footprint{}, false, fmt.Errorf("get summary for body %d: %w", id, err)
	}

	summary, err := decodeRow(unitsKind, unitsValue, cardKind, cardValue)
	if err != nil {
		return footprint.Footprint{}, false, fmt.Errorf("body %d: %w", id, err)
	}
	return summary, true, nil
}

// All reads every stored summary into a fresh table.
// Rows are scanned in body order for deterministic iteration.
func (s *Store) All(ctx context.Context) (*footprint.SummaryTable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body, units_kind, units_value, card_kind, card_value
		FROM summaries ORDER BY body ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	table := footprint.NewSummaryTable()
	for rows.Next() {
		var body uint32
		var unitsKind, cardKind int
		var unitsValue, cardValue uint32
		if err := rows.Scan(&body, &unitsKind, &unitsValue, &cardKind, &cardValue); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summary, err := decodeRow(unitsKind, unitsValue, cardKind, cardValue)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", body, err)
		}
		table.Set(mir.BodyID(body), summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return table, nil
}

// Import upserts every entry of a table, in body order.
func (s *Store) Import(ctx context.Context, table *footprint.SummaryTable) error {
	for _, id := range table.Bodies() {
		summary, _ := table.Lookup(id)
		if err := s.Put(ctx, id, summary); err != nil {
			return err
		}
	}
	return nil
}

func encodeEstimate(e footprint.Estimate) (kind int, value uint32) {
	if e.IsUnknown() {
		return estUnknown, 0
	}
	if v, ok := e.Value(); ok {
		return estExact, v
	}
	return estBottom, 0
}

func decodeEstimate(kind int, value uint32) (footprint.Estimate, error) {
	switch kind {
	case estBottom:
		return footprint.Bottom(), nil
	case estExact:
		return footprint.Exact(value), nil
	case estUnknown:
		return footprint.Unknown(), nil
	default:
		return footprint.Estimate{}, fmt.Errorf("bad estimate kind %d", kind)
	}
}

func decodeRow(unitsKind int, unitsValue uint32, cardKind int, cardValue uint32) (footprint.Footprint, error) {
	units, err := decodeEstimate(unitsKind, unitsValue)
	if err != nil {
		return footprint.Footprint{}, err
	}
	card, err := decodeEstimate(cardKind, cardValue)
	if err != nil {
		return footprint.Footprint{}, err
	}
	return footprint.Footprint{Units: units, Cardinality: card}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 backfills updated_seq on databases created before the column
// existed. New databases get it from schema.sql.
func migrateToV1(db *sql.DB) error {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('summaries') WHERE name = 'updated_seq'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE summaries ADD COLUMN updated_seq INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}
