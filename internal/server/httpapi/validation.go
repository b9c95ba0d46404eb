package httpapi

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern accepts local@domain.tld with no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RequestValidator wraps validator.Validate with the custom tags used by
// request bodies.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate returns "" when s is valid. Otherwise it returns the message
// of the highest-priority failing tag; priority follows the order of
// messages, and a failing tag missing from messages yields fallback.
func (rv *RequestValidator) Validate(s any, fallback string, messages ...tagMessage) string {
	err := rv.v.Struct(s)
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fallback
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Tag()] = true
	}
	for _, m := range messages {
		if failed[m.tag] {
			return m.message
		}
	}
	return fallback
}

type tagMessage struct {
	tag     string
	message string
}

func isValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
