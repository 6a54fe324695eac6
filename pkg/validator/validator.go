package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("password", validatePassword)
}

// Struct validates v against its `validate` tags and returns one message per
// failing field, keyed by JSON field name.
func Struct(v any) ValidationErrors {
	errs := make(ValidationErrors)

	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("body", "Invalid request body")
		return errs
	}

	for _, fe := range fieldErrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, exists := errs[field]; exists {
			continue
		}
		errs.Add(field, message(field, fe))
	}
	return errs
}

func message(field string, fe validator.FieldError) string {
	label := humanize(field)
	tag, param := fe.Tag(), fe.Param()
	// For "a|b" alternatives report the last one, which is the real rule.
	if i := strings.LastIndexByte(tag, '|'); i >= 0 {
		tag = tag[i+1:]
		tag, param, _ = strings.Cut(tag, "=")
	}

	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	inList := strings.Contains(fe.Field(), "[")

	switch tag {
	case "required":
		return label + " is required"
	case "email":
		return "Please provide a valid email address"
	case "password":
		return "Password must contain at least one lowercase letter, one uppercase letter, one number, and one special character"
	case "min":
		if field == "password" {
			return "Password must be at least " + param + " characters long"
		}
		return fmt.Sprintf("%s must be at least %s characters long", label, param)
	case "max":
		if isList {
			return fmt.Sprintf("%s can contain at most %s items", label, param)
		}
		return fmt.Sprintf("%s cannot exceed %s characters", label, param)
	case "url":
		return fmt.Sprintf("Please provide a valid %s URL", strings.TrimSuffix(label, " url"))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "gt":
		if inList {
			return fmt.Sprintf("Invalid %s ID", strings.TrimSuffix(strings.ToLower(label), "s"))
		}
		return label + " must be a positive number"
	}
	return label + " is invalid"
}

// humanize turns a camelCase JSON name into a sentence-case label.
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

const passwordSpecials = "!@#$%^&*"

func validatePassword(fl validator.FieldLevel) bool {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range fl.Field().String() {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, ch):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}
