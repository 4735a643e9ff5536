/*
Package sqlite provides the SQLite-backed implementations of the storage
interfaces.

INTERFACES IMPLEMENTED:
  ledger.ConditionalLog: the append-only transaction log (Store)
  inspection.Store:      validated checklist entries (Store.Inspections())

APPEND-ONLY ENFORCEMENT:
  No UPDATE statements on either table. No DELETE statements on either
  table. Corrections happen by appending new records.

CONDITIONAL APPEND:
  AppendIf runs inside a database transaction: it reads the highest
  sequence for the asset and inserts only if it has not moved past the
  caller's token. With a single writer connection the check-and-insert is
  atomic; a racing writer sees ErrConflict with nothing written.

WAL MODE:
  The database is opened with WAL so resolver reads don't block the
  single writer.

USAGE:
  st, err := sqlite.New("./data/inspection.db")   // ":memory:" for tests
  defer st.Close()
  log := st                    // ledger.ConditionalLog
  insp := st.Inspections()     // inspection.Store
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/symeon158/Equipment-Inspection/inspection"
	"github.com/symeon158/Equipment-Inspection/ledger"
)

const timeLayout = "2006-01-02 15:04:05"

// Store implements ledger.ConditionalLog using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The conditional append depends on a single writer at a time.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Inspections returns the inspection.Store view over the same database.
func (s *Store) Inspections() *InspectionStore {
	return &InspectionStore{db: s.db}
}

func (s *Store) migrate() error {
	schema := `
	-- Equipment transactions (append-only log)
	CREATE TABLE IF NOT EXISTS transactions (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		asset_key TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		actor TEXT NOT NULL,
		direction TEXT NOT NULL,
		condition TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		occurred_at TEXT
	);

	-- Hot path: per-asset resolution in sequence order
	CREATE INDEX IF NOT EXISTS idx_transactions_asset
		ON transactions(asset_key, sequence);

	-- Inspection checklist entries (append-only)
	CREATE TABLE IF NOT EXISTS inspections (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		subject TEXT NOT NULL,
		operator TEXT NOT NULL,
		form_date TEXT NOT NULL,
		submitted_at TEXT NOT NULL,
		operation_hours TEXT NOT NULL,
		critical_break INTEGER NOT NULL,
		items_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_inspections_subject
		ON inspections(subject, sequence);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER LOG
// =============================================================================

// Append persists a record unconditionally and returns its sequence.
func (s *Store) Append(ctx context.Context, rec ledger.Record) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, asset_key, category, actor, direction, condition, comment, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AssetKey, rec.Category, rec.Actor,
		string(rec.Direction), string(rec.Condition), rec.Comment, timeArg(rec.OccurredAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AppendIf persists rec only if no record for the asset has a sequence
// greater than token.
func (s *Store) AppendIf(ctx context.Context, rec ledger.Record, token int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var latest int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) FROM transactions WHERE asset_key = ?`,
		rec.AssetKey).Scan(&latest)
	if err != nil {
		return 0, err
	}
	if latest > token {
		return 0, ledger.ErrConflict
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, asset_key, category, actor, direction, condition, comment, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AssetKey, rec.Category, rec.Actor,
		string(rec.Direction), string(rec.Condition), rec.Comment, timeArg(rec.OccurredAt))
	if err != nil {
		return 0, err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return seq, nil
}

// ReadAll returns every record in sequence order.
func (s *Store) ReadAll(ctx context.Context) ([]ledger.Record, error) {
	return s.readRecords(ctx, `
		SELECT sequence, id, asset_key, category, actor, direction, condition, comment, occurred_at
		FROM transactions ORDER BY sequence`)
}

// ReadAsset returns the asset's records in sequence order.
func (s *Store) ReadAsset(ctx context.Context, assetKey string) ([]ledger.Record, error) {
	return s.readRecords(ctx, `
		SELECT sequence, id, asset_key, category, actor, direction, condition, comment, occurred_at
		FROM transactions WHERE asset_key = ? ORDER BY sequence`, assetKey)
}

func (s *Store) readRecords(ctx context.Context, query string, args ...any) ([]ledger.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ledger.Record
	for rows.Next() {
		var rec ledger.Record
		var direction, condition string
		var occurredAt sql.NullString
		if err := rows.Scan(&rec.Sequence, &rec.ID, &rec.AssetKey, &rec.Category, &rec.Actor,
			&direction, &condition, &rec.Comment, &occurredAt); err != nil {
			return nil, err
		}
		rec.Direction = ledger.Direction(direction)
		rec.Condition = ledger.Condition(condition)
		if occurredAt.Valid {
			if t, err := time.Parse(timeLayout, occurredAt.String); err == nil {
				rec.OccurredAt = &t
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func timeArg(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Format(timeLayout)
}

// =============================================================================
// INSPECTION STORE
// =============================================================================

// InspectionStore implements inspection.Store over the shared database.
type InspectionStore struct {
	db *sql.DB
}

// Record persists a validated inspection entry and returns its sequence.
func (s *InspectionStore) Record(ctx context.Context, e inspection.Entry) (int64, error) {
	items, err := json.Marshal(e.Submission.Items)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO inspections (id, subject, operator, form_date, submitted_at, operation_hours, critical_break, items_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Submission.Subject, e.Submission.Operator,
		e.Submission.Date.Format(time.DateOnly), e.SubmittedAt.Format(timeLayout),
		e.Submission.OperationHours.String(), boolToInt(e.CriticalBreak), string(items))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ReadAll returns every inspection entry in sequence order.
func (s *InspectionStore) ReadAll(ctx context.Context) ([]inspection.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence, id, subject, operator, form_date, submitted_at, operation_hours, critical_break, items_json
		FROM inspections ORDER BY sequence`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []inspection.Entry
	for rows.Next() {
		var e inspection.Entry
		var formDate, submittedAt, hours, itemsJSON string
		var critical int
		if err := rows.Scan(&e.Sequence, &e.ID, &e.Submission.Subject, &e.Submission.Operator,
			&formDate, &submittedAt, &hours, &critical, &itemsJSON); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.DateOnly, formDate); err == nil {
			e.Submission.Date = t
		}
		if t, err := time.Parse(timeLayout, submittedAt); err == nil {
			e.SubmittedAt = t
		}
		if d, err := decimal.NewFromString(hours); err == nil {
			e.Submission.OperationHours = d
		}
		if err := json.Unmarshal([]byte(itemsJSON), &e.Submission.Items); err != nil {
			return nil, err
		}
		e.CriticalBreak = critical != 0
		for _, item := range e.Submission.Items {
			if item.Broken {
				e.BrokenItems = append(e.BrokenItems, item.Name)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var (
	_ ledger.ConditionalLog = (*Store)(nil)
	_ inspection.Store      = (*InspectionStore)(nil)
)
