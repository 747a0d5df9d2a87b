package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gympro-backend/utils"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := utils.RegisterValidators(v); err != nil {
			panic(fmt.Sprintf("register validators: %v", err))
		}
		validate = v
	})
	return validate
}

// validateStruct converts the first failing struct tag into a ValidationError.
func validateStruct(s interface{}) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return invalid(fe.Field(), fe.Tag(), "failed %q validation", fe.Tag())
	}
	return err
}
