package audit

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresSink appends audit rows to the audit_rows table. Inserts happen in
// a single transaction per stage so a partially written stage never lands.
type PostgresSink struct {
	db *sqlx.DB
}

// NewPostgresSink opens the connection and verifies it.
func NewPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect audit postgres: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

// NewPostgresSinkFromDB wraps an existing connection (used by tests).
func NewPostgresSinkFromDB(db *sqlx.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

const insertRow = `
	INSERT INTO audit_rows (run_id, stage, instrument, strategy, recorded_at, payload)
	VALUES ($1, $2, $3, $4, $5, $6)`

// WriteStage appends the stage's rows in batch order.
func (s *PostgresSink) WriteStage(runID uuid.UUID, stage string, rows []Row) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	for i := range rows {
		payload, err := json.Marshal(rows[i].Payload)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal audit payload row %d (%s): %w", i, stage, err)
		}
		if _, err := tx.Exec(insertRow,
			runID, stage, rows[i].Instrument, rows[i].Strategy, rows[i].RecordedAt, payload); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert audit row %d (%s): %w", i, stage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
