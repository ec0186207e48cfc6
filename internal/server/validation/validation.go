// Package validation checks request payloads before they reach storage.
// Structs are annotated with `validate` tags; failures come back as a
// *common.ValidationError keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/soundhub/internal/common"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	must := func(tag string, fn func(string) bool) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	must("email_shape", ValidEmail)
	must("password_strength", func(s string) bool { return PasswordProblem(s) == "" })
	must("username_format", usernamePattern.MatchString)

	return v
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordProblem returns the first strength rule s violates, or "".
func PasswordProblem(s string) string {
	if len(s) < 8 {
		return "Password must be at least 8 characters long"
	}
	if len(s) > MaxPasswordBytes {
		return fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes)
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			upper = true
		case unicode.IsLower(r) && r < unicode.MaxASCII:
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	switch {
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !lower:
		return "Password must contain at least one lowercase letter"
	case !digit:
		return "Password must contain at least one number"
	}
	return ""
}

// overrides replace the generic message for a "field.tag" pair.
var overrides = map[string]string{
	"login.required":            "Email or username is required",
	"confirm_password.required": "Password confirmation is required",
	"confirm_password.eqfield":  "Passwords do not match",
	"role.oneof":                "Role must be 'Guest', 'Listener', or 'Artist'",
	"new_role.oneof":            "Role must be 'Listener' or 'Artist'",
	"type.oneof":                "Type must be either \"Song\" or \"Artwork\"",
}

// label turns a JSON field name into a sentence prefix: first_name -> First name.
func label(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func message(e validator.FieldError) string {
	if m, ok := overrides[e.Field()+"."+e.Tag()]; ok {
		return m
	}

	l := label(e.Field())
	switch e.Tag() {
	case "required":
		return l + " is required"
	case "email_shape":
		return "Invalid email format"
	case "password_strength":
		return PasswordProblem(fmt.Sprint(e.Value()))
	case "username_format":
		return l + " must start with a letter and contain only letters, numbers, and underscores"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", l, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", l, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", l, strings.Join(strings.Fields(e.Param()), ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", l, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", l, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", l, e.Param())
	}
	return l + " is invalid"
}

// Struct validates s (a pointer to a tagged struct). It returns nil,
// a *common.ValidationError, or an error for a non-struct argument.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	ve := &common.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := ve.Fields[fe.Field()]; seen {
			continue
		}
		ve.Fields[fe.Field()] = message(fe)
	}
	return ve
}
