package course

import (
	"math"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studyflow/core"
)

const weightTolerance = 0.01

var (
	weekdayTag  = "weekday"
	weekdayText = "invalid weekday code; use one of M, T, W, Th, F, Sa, Su"

	weightSumTag  = "weightsum"
	weightSumText = "grade category weights must add up to 100%"

	uniqueCategoriesTag  = "uniquecategories"
	uniqueCategoriesText = "grade category names must be unique"
)

// InitValidators registers the course validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)

	validate.RegisterStructValidation(courseStructValidation, NewCourse{})
	core.RegisterCustomTranslation(validate, translator, weightSumTag, weightSumText)
	core.RegisterCustomTranslation(validate, translator, uniqueCategoriesTag, uniqueCategoriesText)
}

// IsWeekday reports whether `code` is a valid schedule day code.
func IsWeekday(code string) bool {
	for _, day := range Weekdays {
		if day == code {
			return true
		}
	}
	return false
}

// WeightsSumTo100 reports whether the category weights add up to 100 (within 0.01).
func WeightsSumTo100(categories []GradeCategory) bool {
	var sum float64
	for _, cat := range categories {
		sum += cat.Weight
	}
	return math.Abs(sum-100) <= weightTolerance
}

func weekdayValidation(fl validator.FieldLevel) bool {
	return IsWeekday(fl.Field().String())
}

// courseStructValidation checks the grade categories as a whole.
func courseStructValidation(sl validator.StructLevel) {
	nc, ok := sl.Current().Interface().(NewCourse)
	if !ok {
		return
	}

	seen := make(map[string]struct{}, len(nc.GradeCategories))
	for _, cat := range nc.GradeCategories {
		if _, dup := seen[cat.Name]; dup {
			sl.ReportError(nc.GradeCategories, "gradeCategories", "GradeCategories", uniqueCategoriesTag, "")
			return
		}
		seen[cat.Name] = struct{}{}
	}

	if !WeightsSumTo100(nc.GradeCategories) {
		sl.ReportError(nc.GradeCategories, "gradeCategories", "GradeCategories", weightSumTag, "")
	}
}
