// Package validation checks request DTOs against their `validate` struct tags and
// turns failures into user-facing messages.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kevinaaaquil/library/backend/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}
		validate = v
	})
	return validate
}

// Struct validates s. Failures come back as a Validation *apperr.Error whose Message is the
// first failing rule and whose Details lists every failing rule.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindValidation, "The input object is null", err)
	}
	details := make([]string, 0, len(fieldErrs))
	seen := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := messageFor(fe)
		if seen[msg] {
			continue
		}
		seen[msg] = true
		details = append(details, msg)
	}
	return &apperr.Error{Kind: apperr.KindValidation, Message: details[0], Details: details}
}

func messageFor(fe validator.FieldError) string {
	key := fieldKey(fe.StructNamespace()) + "|" + fe.Tag()
	if msg, ok := messages[key]; ok {
		return msg
	}
	return fe.Field() + " is invalid"
}

// fieldKey reduces "RegisterInput.Address.Country" to "Address.Country" and drops slice indexes.
func fieldKey(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	key := strings.Join(parts, ".")
	if i := strings.IndexByte(key, '['); i >= 0 {
		key = key[:i]
	}
	return key
}
