package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"algo_exec/internal/domain"
)

// RecordArchive persists sealed execution records in SQLite.
type RecordArchive struct {
	db *sql.DB
}

// NewRecordArchive opens (or creates) the archive database with WAL mode.
func NewRecordArchive(dbPath string) (*RecordArchive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// One row per sealed execution. The payload carries the full record
	// as JSON; the scalar columns exist for querying without unmarshal.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS executions (
			order_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			state TEXT NOT NULL,
			executed_qty INTEGER NOT NULL,
			ended_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create executions table: %w", err)
	}

	return &RecordArchive{db: db}, nil
}

// SaveRecord stores a sealed record. Re-sealing the same order id
// (a resubmitted order after a terminal run) replaces the prior row.
func (a *RecordArchive) SaveRecord(ctx context.Context, rec domain.ExecutionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO executions (order_id, symbol, algorithm, state, executed_qty, ended_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(order_id) DO UPDATE SET
		   symbol=excluded.symbol, algorithm=excluded.algorithm, state=excluded.state,
		   executed_qty=excluded.executed_qty, ended_at=excluded.ended_at, payload=excluded.payload`,
		rec.OrderID, rec.Symbol, rec.Algorithm, string(rec.State),
		rec.ExecutedQty, rec.EndedAt.UnixMilli(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// LoadRecord retrieves one archived record by order id.
// Returns sql.ErrNoRows when the order was never archived.
func (a *RecordArchive) LoadRecord(ctx context.Context, orderID string) (domain.ExecutionRecord, error) {
	var payload []byte
	err := a.db.QueryRowContext(ctx,
		"SELECT payload FROM executions WHERE order_id = ?", orderID,
	).Scan(&payload)
	if err != nil {
		return domain.ExecutionRecord{}, err
	}

	var rec domain.ExecutionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.ExecutionRecord{}, fmt.Errorf("failed to unmarshal record %s: %w", orderID, err)
	}
	return rec, nil
}

// LoadRecords returns all archived records for a symbol, most recent first.
func (a *RecordArchive) LoadRecords(ctx context.Context, symbol string) ([]domain.ExecutionRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT payload FROM executions WHERE symbol = ? ORDER BY ended_at DESC", symbol,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var recs []domain.ExecutionRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec domain.ExecutionRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return recs, nil
}

// Close closes the database connection.
func (a *RecordArchive) Close() error {
	return a.db.Close()
}
