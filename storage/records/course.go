package records

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/course"
)

var (
	courseFields = []string{
		"name", "professor", "description", "credits", "color", "semester",
		"schedule", "gradeCategories", "currentGrade",
	}
	courseFieldNames = fieldNames(courseFields)
)

// CourseToRecord maps a course to its backend record. Nested fields are stored as JSON strings.
func CourseToRecord(c course.Course) Record {
	schedule := make([]course.ScheduleSlot, 0, len(c.Schedule))
	for _, slot := range c.Schedule {
		if slot.Days == nil {
			slot.Days = []string{}
		}
		schedule = append(schedule, slot)
	}
	categories := c.GradeCategories
	if categories == nil {
		categories = []course.GradeCategory{}
	}

	rec := Record{
		FieldName("name"):            c.Name,
		FieldName("professor"):       c.Professor,
		FieldName("description"):     c.Description,
		FieldName("credits"):         c.Credits,
		FieldName("color"):           c.Color,
		FieldName("semester"):        c.Semester,
		FieldName("schedule"):        encodeJSON(schedule),
		FieldName("gradeCategories"): encodeJSON(categories),
		FieldName("currentGrade"):    c.CurrentGrade,
	}
	if c.ID != 0 {
		rec[IDField] = c.ID
	}
	return rec
}

// CourseFromRecord maps a backend record to a course, defaulting what is absent or malformed.
// It returns the names of the malformed fields.
func CourseFromRecord(rec Record) (course.Course, []string) {
	d := newDecoder(rec)
	c := course.Course{
		ID:           d.int(IDField, 0),
		Name:         d.string(FieldName("name")),
		Professor:    d.string(FieldName("professor")),
		Description:  d.string(FieldName("description")),
		Credits:      d.int(FieldName("credits"), 0),
		Color:        d.string(FieldName("color")),
		Semester:     d.string(FieldName("semester")),
		CurrentGrade: d.float(FieldName("currentGrade"), 0),
	}
	if c.Color == "" {
		c.Color = course.UnknownColor
	}
	c.Schedule = decodeSchedule(d, FieldName("schedule"))
	c.GradeCategories = decodeCategories(d, FieldName("gradeCategories"))
	return c, d.malformed
}

func decodeSchedule(d *decoder, field string) []course.ScheduleSlot {
	slots := make([]course.ScheduleSlot, 0)
	for _, item := range d.list(field) {
		obj, ok := item.(map[string]interface{})
		if !ok {
			d.report(field, malformed)
			continue
		}
		slot := course.ScheduleSlot{Days: []string{}}
		if days, st := decodeList(obj["days"]); st == present {
			for _, day := range days {
				if code, ok := day.(string); ok {
					slot.Days = append(slot.Days, code)
				}
			}
		}
		slot.Time, _ = decodeString(obj["time"])
		slots = append(slots, slot)
	}
	return slots
}

func decodeCategories(d *decoder, field string) []course.GradeCategory {
	categories := make([]course.GradeCategory, 0)
	for _, item := range d.list(field) {
		obj, ok := item.(map[string]interface{})
		if !ok {
			d.report(field, malformed)
			continue
		}
		name, _ := decodeString(obj["name"])
		weight, st := decodeFloat(obj["weight"])
		if st == malformed {
			d.report(field, st)
		}
		categories = append(categories, course.GradeCategory{Name: name, Weight: weight})
	}
	return categories
}

type courseRepository struct {
	store  Store
	logger core.Logger
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(store Store, logger core.Logger) *courseRepository {
	return &courseRepository{store: store, logger: logger}
}

func (repo *courseRepository) decode(rec Record) course.Course {
	c, bad := CourseFromRecord(rec)
	if len(bad) > 0 {
		repo.logger.Warn("malformed course record", map[string]interface{}{"Id": c.ID, "fields": bad})
	}
	return c
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course, idempotencyKey string) (course.Course, error) {
	c.ID = 0
	resp, err := repo.store.Create(ctx, CourseTable, []Record{CourseToRecord(c)}, idempotencyKey)
	rec, err := firstResult("create", CourseTable, resp, err, courseFieldNames)
	if err != nil {
		return course.Course{}, err
	}
	return repo.decode(rec), nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	recs, err := fetchAll(ctx, repo.store, CourseTable, Query{
		OrderBy: []core.DBOrdering{{Field: IDField, Ascending: true}},
	})
	if err != nil {
		return nil, err
	}
	courses := make([]course.Course, 0, len(recs))
	for _, rec := range recs {
		courses = append(courses, repo.decode(rec))
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	rec, err := fetchOne(ctx, repo.store, CourseTable, id)
	if err != nil {
		if errors.Cause(err) == errRecordNotFound {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	return repo.decode(rec), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	resp, err := repo.store.Update(ctx, CourseTable, []Record{CourseToRecord(c)})
	rec, err := firstResult("update", CourseTable, resp, err, courseFieldNames)
	if err != nil {
		if errors.Cause(err) == errRecordNotFound {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	if rec == nil {
		return c, nil
	}
	return repo.decode(rec), nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	resp, err := repo.store.Delete(ctx, CourseTable, ids)
	return checkAll("delete", CourseTable, resp, err)
}
