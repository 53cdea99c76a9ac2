package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/famledger/internal/models"
)

// Directory is the closed set of people and categories the board accepts.
type Directory struct {
	People     []string
	Categories []string
}

func (d Directory) hasPerson(name string) bool {
	for _, p := range d.People {
		if p == name {
			return true
		}
	}
	return false
}

func (d Directory) hasCategory(name string) bool {
	for _, c := range d.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// newValidator builds a validator that knows the "person" and "category" tags.
// Field names in errors are taken from json tags.
func newValidator(dir Directory) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("person", func(fl validator.FieldLevel) bool {
		return dir.hasPerson(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return dir.hasCategory(fl.Field().String())
	})
	return v
}

// toValidationError converts validator output into a models.ValidationError.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}
	ve := &models.ValidationError{}
	for _, fe := range verrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
	return ve
}

func amountTooLarge(field string) error {
	ve := &models.ValidationError{}
	ve.Add(field, fmt.Sprintf("%s is too large", field))
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "person":
		return fmt.Sprintf("%s %q is not a family member", fe.Field(), fe.Value())
	case "category":
		return fmt.Sprintf("unknown category %q", fe.Value())
	case "nefield":
		return "debtor and creditor must be different"
	case "gt":
		return "amount must be greater than zero"
	case "datetime":
		return "due date must be formatted as YYYY-MM-DD"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Field(), fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not repeat a person", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
