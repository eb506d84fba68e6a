package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	maskedPlaceholder = "****"
	maskVisibleChars  = 4
	maskMinLength     = 8
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate
}

// Validate checks v against its validate struct tags. Field names in the
// error use the JSON names.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// MaskAPIKey hides all but the first and last four characters of key.
// Keys shorter than eight characters are fully masked.
func MaskAPIKey(key string) string {
	if len(key) < maskMinLength {
		return maskedPlaceholder
	}
	return key[:maskVisibleChars] + maskedPlaceholder + key[len(key)-maskVisibleChars:]
}
