// Package records speaks the record-storage backend contract: a generic fetch/mutate API over
// named tables of loosely typed records. It maps courses & assignments to and from backend records.
package records

import (
	"context"
	"fmt"

	"github.com/trezcool/studyflow/core"
)

// Backend tables
const (
	CourseTable     = "course_c"
	AssignmentTable = "assignment_c"
)

// Condition operators
const (
	OpEqualTo     = "EqualTo"
	OpNotEqualTo  = "NotEqualTo"
	OpContains    = "Contains"
	OpGreaterThan = "GreaterThan"
	OpLessThan    = "LessThan"
	OpIn          = "In"
)

// IDField is the backend primary key; NameField the backend display name.
const (
	IDField   = "Id"
	NameField = "Name"
)

type (
	// Record is a backend record as decoded from JSON.
	Record map[string]interface{}

	Condition struct {
		Field    string        `json:"FieldName"`
		Operator string        `json:"Operator"`
		Values   []interface{} `json:"Values"`
	}

	Query struct {
		Fields  []string
		Where   []Condition
		OrderBy []core.DBOrdering
		Limit   int // 0: backend default
		Offset  int
	}

	FieldError struct {
		FieldLabel string `json:"fieldLabel"`
		Message    string `json:"message"`
	}

	Result struct {
		Success bool         `json:"success"`
		Data    Record       `json:"data,omitempty"`
		Message string       `json:"message,omitempty"`
		Errors  []FieldError `json:"errors,omitempty"`
	}

	ManyResponse struct {
		Success bool     `json:"success"`
		Message string   `json:"message,omitempty"`
		Data    []Record `json:"data"`
		Total   int      `json:"total"`
	}

	OneResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
		Data    Record `json:"data"` // nil when the record does not exist
	}

	MutateResponse struct {
		Success bool     `json:"success"`
		Message string   `json:"message,omitempty"`
		Results []Result `json:"results"`
	}

	// Store is a record-storage backend.
	// A returned error is a transport failure; backend-reported failures come back in the responses.
	Store interface {
		FetchMany(ctx context.Context, table string, q Query) (*ManyResponse, error)
		FetchOne(ctx context.Context, table string, id int) (*OneResponse, error)
		// Create inserts `recs`. A replayed idempotencyKey returns the first response without inserting.
		Create(ctx context.Context, table string, recs []Record, idempotencyKey string) (*MutateResponse, error)
		// Update replaces the fields of `recs`; each record carries its Id.
		Update(ctx context.Context, table string, recs []Record) (*MutateResponse, error)
		Delete(ctx context.Context, table string, ids []int) (*MutateResponse, error)
	}
)

// BackendError is a failure reported by the backend itself.
type BackendError struct {
	Op      string
	Table   string
	Message string
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("backend %s %s: %s", e.Op, e.Table, msg)
}

// ID returns the record id, normalizing backend numbers.
func (r Record) ID() int {
	id, st := decodeInt(r[IDField])
	if st != present {
		return 0
	}
	return id
}
