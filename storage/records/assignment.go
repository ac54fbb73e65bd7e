package records

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
)

var (
	assignmentFields = []string{
		"courseId", "title", "dueDate", "priority", "status", "grade", "category", "estimatedTime", "notes",
	}
	assignmentFieldNames = fieldNames(assignmentFields)
)

func nullable(f null.Float64) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

// AssignmentToRecord maps an assignment to its backend record.
// The backend display name mirrors the title.
func AssignmentToRecord(a assignment.Assignment) Record {
	rec := Record{
		NameField:                  a.Title,
		FieldName("courseId"):      a.CourseID,
		FieldName("title"):         a.Title,
		FieldName("dueDate"):       a.DueDate.UTC().Format(time.RFC3339),
		FieldName("priority"):      a.Priority,
		FieldName("status"):        a.Status,
		FieldName("grade"):         nullable(a.Grade),
		FieldName("category"):      a.Category,
		FieldName("estimatedTime"): nullable(a.EstimatedTime),
		FieldName("notes"):         a.Notes,
	}
	if a.ID != 0 {
		rec[IDField] = a.ID
	}
	return rec
}

// AssignmentFromRecord maps a backend record to an assignment, defaulting what is absent or malformed.
// A malformed grade counts as a graded 0; a malformed estimated time as unknown.
// It returns the names of the malformed fields.
func AssignmentFromRecord(rec Record) (assignment.Assignment, []string) {
	d := newDecoder(rec)
	a := assignment.Assignment{
		ID:       d.int(IDField, 0),
		CourseID: d.ref(FieldName("courseId")),
		Title:    d.string(FieldName("title")),
		DueDate:  d.time(FieldName("dueDate")),
		Priority: d.string(FieldName("priority")),
		Status:   d.string(FieldName("status")),
		Category: d.string(FieldName("category")),
		Notes:    d.string(FieldName("notes")),
	}
	if a.Title == "" {
		a.Title = d.string(NameField)
	}
	if a.Priority == "" {
		a.Priority = assignment.PriorityMedium
	}
	if a.Status == "" {
		a.Status = assignment.StatusPending
	}
	if g, ok := d.nullFloat(FieldName("grade"), true); ok {
		a.Grade = null.Float64From(g)
	}
	if h, ok := d.nullFloat(FieldName("estimatedTime"), false); ok {
		a.EstimatedTime = null.Float64From(h)
	}
	return a, d.malformed
}

type assignmentRepository struct {
	store  Store
	logger core.Logger
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(store Store, logger core.Logger) *assignmentRepository {
	return &assignmentRepository{store: store, logger: logger}
}

func (repo *assignmentRepository) decode(rec Record) assignment.Assignment {
	a, bad := AssignmentFromRecord(rec)
	if len(bad) > 0 {
		repo.logger.Warn("malformed assignment record", map[string]interface{}{"Id": a.ID, "fields": bad})
	}
	return a
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, idempotencyKey string) (assignment.Assignment, error) {
	a.ID = 0
	resp, err := repo.store.Create(ctx, AssignmentTable, []Record{AssignmentToRecord(a)}, idempotencyKey)
	rec, err := firstResult("create", AssignmentTable, resp, err, assignmentFieldNames)
	if err != nil {
		return assignment.Assignment{}, err
	}
	return repo.decode(rec), nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, courseID int) ([]assignment.Assignment, error) {
	q := Query{OrderBy: []core.DBOrdering{{Field: IDField, Ascending: true}}}
	if courseID != 0 {
		q.Where = []Condition{{Field: FieldName("courseId"), Operator: OpEqualTo, Values: []interface{}{courseID}}}
	}
	recs, err := fetchAll(ctx, repo.store, AssignmentTable, q)
	if err != nil {
		return nil, err
	}
	list := make([]assignment.Assignment, 0, len(recs))
	for _, rec := range recs {
		list = append(list, repo.decode(rec))
	}
	return list, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id int) (assignment.Assignment, error) {
	rec, err := fetchOne(ctx, repo.store, AssignmentTable, id)
	if err != nil {
		if errors.Cause(err) == errRecordNotFound {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, err
	}
	return repo.decode(rec), nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	resp, err := repo.store.Update(ctx, AssignmentTable, []Record{AssignmentToRecord(a)})
	rec, err := firstResult("update", AssignmentTable, resp, err, assignmentFieldNames)
	if err != nil {
		if errors.Cause(err) == errRecordNotFound {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, err
	}
	if rec == nil {
		return a, nil
	}
	return repo.decode(rec), nil
}

func (repo *assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	resp, err := repo.store.Delete(ctx, AssignmentTable, ids)
	return checkAll("delete", AssignmentTable, resp, err)
}
