package records

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
)

func TestFieldName(t *testing.T) {
	tests := map[string]string{
		"Id":              "Id",
		"id":              "Id",
		"name":            "Name",
		"courseId":        "course_id_c",
		"dueDate":         "due_date_c",
		"gradeCategories": "grade_categories_c",
		"estimatedTime":   "estimated_time_c",
		"notes":           "notes_c",
		"currentGrade":    "current_grade_c",
		"credits":         "credits_c",
	}
	for field, want := range tests {
		assert.Equal(t, want, FieldName(field), field)
	}
}

func TestCourseRecord_roundTrip(t *testing.T) {
	c := course.Course{
		ID:          4,
		Name:        "Calculus II",
		Professor:   "Dr. Noether",
		Description: "Series & integrals",
		Credits:     4,
		Color:       "#10b981",
		Semester:    "Fall 2024",
		Schedule: []course.ScheduleSlot{
			{Days: []string{course.Monday, course.Wednesday}, Time: "09:00 - 10:15"},
		},
		GradeCategories: course.DefaultGradeCategories(),
		CurrentGrade:    87.5,
	}

	rec := CourseToRecord(c)
	assert.IsType(t, "", rec["schedule_c"], "nested fields are JSON strings")

	got, bad := CourseFromRecord(rec)
	assert.Empty(t, bad)
	assert.Equal(t, c, got)
}

func TestCourseFromRecord_defaults(t *testing.T) {
	tests := []struct {
		name          string
		rec           Record
		wantMalformed []string
	}{
		{name: "absent", rec: Record{"Id": 1.0}},
		{name: "null", rec: Record{"Id": 1.0, "schedule_c": nil, "grade_categories_c": "null"}},
		{name: "blank", rec: Record{"Id": 1.0, "schedule_c": "", "grade_categories_c": "  "}},
		{
			name:          "malformed",
			rec:           Record{"Id": 1.0, "schedule_c": "{oops", "grade_categories_c": 12.0, "credits_c": "three"},
			wantMalformed: []string{"credits_c", "schedule_c", "grade_categories_c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, bad := CourseFromRecord(tt.rec)
			assert.Equal(t, 1, c.ID)
			assert.Equal(t, []course.ScheduleSlot{}, c.Schedule)
			assert.Equal(t, []course.GradeCategory{}, c.GradeCategories)
			assert.Equal(t, course.UnknownColor, c.Color)
			assert.Equal(t, 0, c.Credits)
			assert.ElementsMatch(t, tt.wantMalformed, bad)
		})
	}
}

func TestCourseFromRecord_decodedLists(t *testing.T) {
	rec := Record{
		"Id":                 "2",
		"Name":               "Labs",
		"credits_c":          "3",
		"grade_categories_c": []interface{}{map[string]interface{}{"name": "Labs", "weight": "100"}},
	}
	c, bad := CourseFromRecord(rec)
	assert.Empty(t, bad)
	assert.Equal(t, 2, c.ID)
	assert.Equal(t, 3, c.Credits)
	assert.Equal(t, []course.GradeCategory{{Name: "Labs", Weight: 100}}, c.GradeCategories)
}

func TestAssignmentRecord_roundTrip(t *testing.T) {
	a := assignment.Assignment{
		ID:            12,
		CourseID:      4,
		Title:         "Problem set 4",
		DueDate:       time.Date(2024, 10, 18, 23, 59, 0, 0, time.UTC),
		Priority:      assignment.PriorityHigh,
		Status:        assignment.StatusInProgress,
		Grade:         null.Float64From(92),
		Category:      "Homework",
		EstimatedTime: null.Float64From(1.5),
		Notes:         "chapters 9-10",
	}

	rec := AssignmentToRecord(a)
	assert.Equal(t, a.Title, rec[NameField])

	got, bad := AssignmentFromRecord(rec)
	assert.Empty(t, bad)
	assert.Equal(t, a, got)

	a.Grade, a.EstimatedTime = null.Float64{}, null.Float64{}
	got, _ = AssignmentFromRecord(AssignmentToRecord(a))
	assert.False(t, got.Grade.Valid)
	assert.False(t, got.EstimatedTime.Valid)
}

func TestAssignmentFromRecord_courseRef(t *testing.T) {
	tests := []struct {
		name          string
		ref           interface{}
		want          int
		wantMalformed bool
	}{
		{name: "number", ref: 3.0, want: 3},
		{name: "numeric string", ref: "3", want: 3},
		{name: "embedded object", ref: map[string]interface{}{"Id": 3.0, "Name": "Calculus II"}, want: 3},
		{name: "object without id", ref: map[string]interface{}{"Name": "Calculus II"}, wantMalformed: true},
		{name: "fraction", ref: 3.5, wantMalformed: true},
		{name: "absent", ref: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, bad := AssignmentFromRecord(Record{"Id": 1.0, "course_id_c": tt.ref})
			assert.Equal(t, tt.want, a.CourseID)
			if tt.wantMalformed {
				assert.Equal(t, []string{"course_id_c"}, bad)
			} else {
				assert.Empty(t, bad)
			}
		})
	}
}

func TestAssignmentFromRecord_malformed(t *testing.T) {
	a, bad := AssignmentFromRecord(Record{
		"Id":               1.0,
		"Name":             "Essay",
		"grade_c":          "A+",
		"estimated_time_c": "a while",
		"due_date_c":       "next week",
	})
	assert.Equal(t, "Essay", a.Title, "title falls back to the record name")
	assert.Equal(t, null.Float64From(0), a.Grade, "malformed grade counts as a graded 0")
	assert.False(t, a.EstimatedTime.Valid)
	assert.True(t, a.DueDate.IsZero())
	assert.Equal(t, assignment.PriorityMedium, a.Priority)
	assert.Equal(t, assignment.StatusPending, a.Status)
	assert.ElementsMatch(t, []string{"grade_c", "estimated_time_c", "due_date_c"}, bad)
}

// pagedStore serves `recs` page by page & records the queries it got.
type pagedStore struct {
	Store
	recs    []Record
	queries []Query
}

func (s *pagedStore) FetchMany(_ context.Context, _ string, q Query) (*ManyResponse, error) {
	s.queries = append(s.queries, q)
	end := q.Offset + q.Limit
	if end > len(s.recs) {
		end = len(s.recs)
	}
	page := []Record{}
	if q.Offset < len(s.recs) {
		page = s.recs[q.Offset:end]
	}
	return &ManyResponse{Success: true, Data: page, Total: len(s.recs)}, nil
}

func TestFetchAll(t *testing.T) {
	defer func(size int) { pageSize = size }(pageSize)
	pageSize = 2

	tests := []struct {
		name      string
		total     int
		wantPages int
	}{
		{name: "empty", total: 0, wantPages: 1},
		{name: "single page", total: 1, wantPages: 1},
		{name: "exact pages", total: 4, wantPages: 2},
		{name: "partial last page", total: 5, wantPages: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &pagedStore{}
			for i := 1; i <= tt.total; i++ {
				store.recs = append(store.recs, Record{"Id": float64(i)})
			}
			recs, err := fetchAll(context.Background(), store, CourseTable, Query{})
			require.NoError(t, err)
			assert.Len(t, recs, tt.total)
			assert.Len(t, store.queries, tt.wantPages)
		})
	}
}

// unpagedStore ignores paging: every call returns the whole table & no total.
type unpagedStore struct {
	Store
	recs  []Record
	calls int
}

func (s *unpagedStore) FetchMany(_ context.Context, _ string, _ Query) (*ManyResponse, error) {
	s.calls++
	return &ManyResponse{Success: true, Data: s.recs}, nil
}

func TestFetchAll_pagingIgnored(t *testing.T) {
	defer func(size int) { pageSize = size }(pageSize)
	pageSize = 2

	store := &unpagedStore{recs: []Record{{"Id": 1.0}, {"Id": 2.0}, {"Id": 3.0}}}
	recs, err := fetchAll(context.Background(), store, CourseTable, Query{})
	require.NoError(t, err)
	assert.Equal(t, store.recs, recs)
	assert.Equal(t, 2, store.calls)
}

func TestFetchAll_withoutIds(t *testing.T) {
	defer func(size int) { pageSize = size }(pageSize)
	pageSize = 2

	store := &unpagedStore{recs: []Record{{"Name": "a"}, {"Name": "b"}}}
	recs, err := fetchAll(context.Background(), store, CourseTable, Query{})
	require.NoError(t, err)
	assert.Equal(t, store.recs, recs)
	assert.Equal(t, 1, store.calls)
}

func TestFirstResult(t *testing.T) {
	tests := []struct {
		name    string
		resp    *MutateResponse
		err     error
		want    Record
		wantErr interface{}
	}{
		{
			name: "success",
			resp: &MutateResponse{Success: true, Results: []Result{{Success: true, Data: Record{"Id": 1.0}}}},
			want: Record{"Id": 1.0},
		},
		{name: "transport", err: errors.New("dial tcp: refused"), wantErr: errors.New("")},
		{
			name:    "backend failure",
			resp:    &MutateResponse{Success: false, Message: "quota exceeded"},
			wantErr: &BackendError{},
		},
		{
			name:    "not found",
			resp:    &MutateResponse{Results: []Result{{Message: NotFoundMessage}}},
			wantErr: errRecordNotFound,
		},
		{
			name: "field errors",
			resp: &MutateResponse{Results: []Result{{Errors: []FieldError{
				{FieldLabel: "grade_c", Message: "must be a number"},
			}}}},
			wantErr: &core.ValidationError{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := firstResult("create", AssignmentTable, tt.resp, tt.err, assignmentFieldNames)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, rec)
				return
			}
			require.Error(t, err)
			switch want := tt.wantErr.(type) {
			case *BackendError:
				assert.IsType(t, want, err)
			case *core.ValidationError:
				var verr *core.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, []core.FieldError{{Field: "grade", Error: "must be a number"}}, verr.Fields)
			default:
				if want == errRecordNotFound {
					assert.Equal(t, errRecordNotFound, errors.Cause(err))
				}
			}
		})
	}
}

func TestCheckAll(t *testing.T) {
	assert.NoError(t, checkAll("delete", CourseTable, &MutateResponse{Success: true, Results: []Result{
		{Success: true}, {Message: NotFoundMessage},
	}}, nil))

	err := checkAll("delete", CourseTable, &MutateResponse{Results: []Result{{Success: true}, {Message: "locked"}}}, nil)
	var berr *BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "locked", berr.Message)
}
