// utils/validation.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Allows + prefix followed by up to 15 digits
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

var phoneCleaner = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phoneCleaner.Replace(phone))
}

// RegisterValidators installs the custom "phone" rule on v.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	})
}
