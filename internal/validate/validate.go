package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

	v = validator.New(validator.WithRequiredStructEnabled())
)

// ValidationError names the first field that failed. Callers show Message
// next to the form and never dispatch the request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// RequiredText trims s and fails when nothing is left.
func RequiredText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: field, Message: label(field) + " is required"}
	}
	return s, nil
}

// ID validates a backend record identifier taken from a path or form.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Search trims a listing search term and caps its length.
func Search(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 80 {
		s = string([]rune(s)[:80])
	}
	return s
}

// Page parses a 1-based page number; junk reads as 1. Clamping to the last
// page happens once the total is known.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

type LoginForm struct {
	EmailOrPhone string `form:"email" validate:"required,max=100"`
	Password     string `form:"password" validate:"required,min=8,max=128"`
}

type SignupForm struct {
	Name     string `form:"name" validate:"required,max=80"`
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,min=6,max=128"`
	Role     string `form:"role" validate:"required,oneof=Admin 'Super Admin' 'Customer care'"`
}

// Struct runs the validate tags of s and reports the first failure as a
// *ValidationError.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: strings.ToLower(fe.Field()), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "oneof":
		return "Please select a " + strings.ToLower(name)
	}
	return name + " is invalid"
}

func label(field string) string {
	switch strings.ToLower(field) {
	case "emailorphone":
		return "Email or phone"
	case "":
		return "Field"
	}
	f := strings.ToLower(field)
	return strings.ToUpper(f[:1]) + f[1:]
}
