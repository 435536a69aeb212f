package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate     *validator.Validate
	enTranslator ut.Translator
)

func init() {
	validate, enTranslator = newValidator()
}

func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New()

	// Register default EN translator
	enLocale := en.New()
	translator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		panic(fmt.Errorf("en translator was not found"))
	}
	if err := enTranslation.RegisterDefaultTranslations(v, translator); err != nil {
		panic(fmt.Errorf("translator was not registered: %w", err))
	}

	// Use JSON field name in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return v, translator
}

// Struct validates a struct by its "validate" tags. All failures are joined
// into one error with a human readable message per field.
func Struct(value interface{}) error {
	if err := validate.Struct(value); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return processValidateError(validationErrs)
		}
		return err
	}
	return nil
}

func processValidateError(errs validator.ValidationErrors) error {
	result := make([]error, 0, len(errs))
	for _, e := range errs {
		result = append(result, errors.New(e.Translate(enTranslator)))
	}
	return errors.Join(result...)
}
