package notification

import (
	"github.com/go-playground/validator/v10"

	"github.com/womanacademy/renluyen/core"
)

var (
	notifTypeTag  = "notiftype"
	notifTypeText = "type must be one of: info, success, warning, error"
)

func init() {
	_ = core.Validate.RegisterValidation(notifTypeTag, notifTypeValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, notifTypeTag, notifTypeText)
}

func notifTypeValidation(fl validator.FieldLevel) bool {
	typ := fl.Field().String()
	for _, t := range AllTypes {
		if typ == t {
			return true
		}
	}
	return false
}
