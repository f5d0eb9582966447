package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaNumUnderValidation(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{value: "2021001", valid: true},
		{value: "SV_2021A", valid: true},
		{value: "2021 001", valid: false},
		{value: " 2021001", valid: false},
		{value: "2021\t001", valid: false},
		{value: "20-21", valid: false},
		{value: "Nguyễn", valid: false},
	}
	for _, tt := range tests {
		err := Validate.Var(tt.value, alphaNumUnderTag)
		if tt.valid {
			assert.NoError(t, err, tt.value)
			continue
		}
		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs, tt.value)
		assert.Equal(t, alphaNumUnderText, vErrs[0].Translate(Translator))
	}
}
