package domain

import (
	"errors"
	"fmt"
)

// SchemaError marks a contract violation between pipeline stages or with an
// upstream collaborator: a required column is structurally absent, or a batch
// changed size between stages. Schema errors abort the whole run; they are
// never downgraded to a per-candidate business outcome.
type SchemaError struct {
	Stage  string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation in %s: %s", e.Stage, e.Detail)
}

// NewSchemaError builds a SchemaError for the given stage.
func NewSchemaError(stage, format string, args ...interface{}) error {
	return &SchemaError{Stage: stage, Detail: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err is (or wraps) a schema violation.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// RowCountError is the specific schema violation for a batch that changed
// size between stage input and stage output.
func RowCountError(stage string, in, out int) error {
	return NewSchemaError(stage, "row count changed: %d in, %d out", in, out)
}
