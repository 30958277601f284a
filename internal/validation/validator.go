// Package validation checks use case inputs against their struct tags and
// reports failures as domain errors.
package validation

import (
	"reflect"
	"strings"
	"sync"

	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/errors"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their json names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}

			return name
		})
	})

	return validate
}

// Struct validates s using its `validate` tags.
//
// Any missing required field yields ErrValidationFailed. Only when every
// required field is present does an eqfield failure yield ErrPasswordMismatch.
// The returned error carries the offending field names as details.
func Struct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	var missing, mismatched []string
	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "eqfield":
			mismatched = append(mismatched, fieldErr.Field())
		default:
			missing = append(missing, fieldErr.Field())
		}
	}

	if len(missing) > 0 {
		return domainerrors.ErrValidationFailed.WithDetails("missing: " + strings.Join(missing, ", "))
	}

	return domainerrors.ErrPasswordMismatch.WithDetails("mismatch: " + strings.Join(mismatched, ", "))
}
