package assignment

import (
	"fmt"
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/course"
)

var (
	// suggestions below this similarity ratio are not worth showing
	minSuggestionRatio = .5

	errCourseNotFound = "course not found"
)

// InitValidators registers the assignment validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	// validate the value of nullable fields; null values count as empty
	validate.RegisterCustomTypeFunc(nullFloatValue, null.Float64{})
}

func nullFloatValue(field reflect.Value) interface{} {
	if v, ok := field.Interface().(null.Float64); ok && v.Valid {
		return v.Float64
	}
	return nil
}

// validateCourseAndCategory checks that the referenced course exists and, when it defines
// grade categories, that `category` is one of them.
func validateCourseAndCategory(courseID int, category string, courses []course.Course) error {
	crs, ok := course.Find(courseID, courses)
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "courseId", Error: errCourseNotFound})
	}
	if len(crs.GradeCategories) == 0 || crs.HasCategory(category) {
		return nil
	}

	msg := fmt.Sprintf("%q is not a grade category of %s", category, crs.Name)
	if suggestion := closestCategory(category, crs.CategoryNames()); suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", suggestion)
	}
	return core.NewValidationError(nil, core.FieldError{Field: "category", Error: msg})
}

// closestCategory returns the category name most similar to `name`, if similar enough.
func closestCategory(name string, names []string) string {
	if name == "" {
		return ""
	}
	var (
		best      string
		bestRatio float64
	)
	lname := strings.ToLower(name)
	for _, candidate := range names {
		ratio := difflib.NewMatcher(strings.Split(lname, ""), strings.Split(strings.ToLower(candidate), "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = candidate, ratio
		}
	}
	if bestRatio < minSuggestionRatio {
		return ""
	}
	return best
}
