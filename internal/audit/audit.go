package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Row is one candidate's state at one pipeline stage. The audit trail is
// append-only and is never read back into the pipeline.
type Row struct {
	RunID      uuid.UUID   `json:"run_id" db:"run_id"`
	Stage      string      `json:"stage" db:"stage"`
	Instrument string      `json:"instrument" db:"instrument"`
	Strategy   string      `json:"strategy" db:"strategy"`
	RecordedAt time.Time   `json:"recorded_at" db:"recorded_at"`
	Payload    interface{} `json:"payload" db:"-"`
}

// Sink receives per-stage audit rows for offline inspection.
type Sink interface {
	WriteStage(runID uuid.UUID, stage string, rows []Row) error
	Close() error
}

// Nop is the sink used when auditing is disabled.
type Nop struct{}

func (Nop) WriteStage(uuid.UUID, string, []Row) error { return nil }
func (Nop) Close() error                              { return nil }

// JSONLWriter appends one JSON object per row to a per-run file. The file is
// named after the run ID, so it opens lazily on the first stage write.
type JSONLWriter struct {
	dir  string
	file *os.File
}

// NewJSONLWriter ensures the audit directory exists.
func NewJSONLWriter(dir string) (*JSONLWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &JSONLWriter{dir: dir}, nil
}

// WriteStage appends the stage's rows in batch order.
func (w *JSONLWriter) WriteStage(runID uuid.UUID, stage string, rows []Row) error {
	if w.file == nil {
		path := filepath.Join(w.dir, fmt.Sprintf("run-%s.jsonl", runID))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open audit file: %w", err)
		}
		w.file = f
	}
	enc := json.NewEncoder(w.file)
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return fmt.Errorf("append audit row %d (%s): %w", i, stage, err)
		}
	}
	return nil
}

// Close flushes and closes the run's file.
func (w *JSONLWriter) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Multi fans rows out to several sinks.
type Multi []Sink

func (m Multi) WriteStage(runID uuid.UUID, stage string, rows []Row) error {
	for _, s := range m {
		if err := s.WriteStage(runID, stage, rows); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
