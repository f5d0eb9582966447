package calendar

import (
	"github.com/go-playground/validator/v10"

	"github.com/womanacademy/renluyen/core"
)

var (
	eventTypeTag  = "eventtype"
	eventTypeText = "type must be one of: personal, shared, meeting, deadline, reminder"

	dateOrderTag  = "dateorder"
	dateOrderText = "end date must not be before start date"

	datetimeTag  = "datetime"
	datetimeText = "date must be formatted as YYYY-MM-DD"
)

func init() {
	_ = core.Validate.RegisterValidation(eventTypeTag, eventTypeValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, eventTypeTag, eventTypeText)
	core.RegisterCustomTranslation(core.Validate, core.Translator, datetimeTag, datetimeText, true)

	core.Validate.RegisterStructValidation(eventStructValidation, Event{})
	core.RegisterCustomTranslation(core.Validate, core.Translator, dateOrderTag, dateOrderText)
}

func eventTypeValidation(fl validator.FieldLevel) bool {
	typ := fl.Field().String()
	for _, t := range AllTypes {
		if typ == t {
			return true
		}
	}
	return false
}

// eventStructValidation checks a merged Event before it is stored.
// Dates are YYYY-MM-DD so they compare lexically.
func eventStructValidation(sl validator.StructLevel) {
	evt := sl.Current().Interface().(Event)
	if evt.EndDate < evt.StartDate {
		sl.ReportError(evt.EndDate, "endDate", "EndDate", dateOrderTag, "")
	}
	if !evt.IsAllDay && evt.StartTime != "" && evt.EndTime != "" &&
		evt.StartDate == evt.EndDate && evt.EndTime < evt.StartTime {
		sl.ReportError(evt.EndTime, "endTime", "EndTime", dateOrderTag, "")
	}
}
