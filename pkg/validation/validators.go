package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Brazilian landline/mobile as typed on the site form: area code in
// parentheses, space, 4-or-5-digit prefix, dash, 4-digit suffix.
// Strict format gate, not a semantic phone-number check.
var brPhoneRegex = regexp.MustCompile(`^\(\d{2}\) \d{4,5}-\d{4}$`)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("br_phone", BRPhone)
}

// BRPhone validates the (XX) XXXXX-XXXX / (XX) XXXX-XXXX phone format.
func BRPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // combine with required when the field is mandatory
	}
	return brPhoneRegex.MatchString(val)
}
