package evaluation

import (
	"github.com/go-playground/validator/v10"

	"github.com/womanacademy/renluyen/core"
)

var (
	sectionBoundsTag  = "sectionbounds"
	sectionBoundsText = "score must be between 0 and the section maximum"

	statusTag  = "evalstatus"
	statusText = "status must be one of: draft, submitted, graded"
)

func init() {
	_ = core.Validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, statusTag, statusText)

	core.Validate.RegisterStructValidation(upsertStructValidation, UpsertEvaluation{})
	core.Validate.RegisterStructValidation(gradeStructValidation, GradeEvaluation{})
	core.RegisterCustomTranslation(core.Validate, core.Translator, sectionBoundsTag, sectionBoundsText)
}

func statusValidation(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	for _, s := range AllStatuses {
		if status == s {
			return true
		}
	}
	return false
}

func inBounds(score, max int) bool {
	return score >= 0 && score <= max
}

// upsertStructValidation requires every section with a self score within its bounds.
func upsertStructValidation(sl validator.StructLevel) {
	ue := sl.Current().Interface().(UpsertEvaluation)
	for i, in := range ue.sections() {
		sec := Sections[i]
		switch {
		case in == nil || in.SelfScore == nil:
			sl.ReportError(in, sec.Key, sec.Key, "required", "")
		case !inBounds(*in.SelfScore, sec.Max):
			sl.ReportError(*in.SelfScore, sec.Key, sec.Key, sectionBoundsTag, "")
		}
	}
}

func gradeStructValidation(sl validator.StructLevel) {
	ge := sl.Current().Interface().(GradeEvaluation)
	if ge.Grades == nil {
		return
	}
	for i, grade := range ge.Grades.values() {
		sec := Sections[i]
		if grade != nil && !inBounds(*grade, sec.Max) {
			sl.ReportError(*grade, sec.Key, sec.Key, sectionBoundsTag, "")
		}
	}
}
