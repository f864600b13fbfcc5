// Package validation checks inventory payloads before they reach storage.
//
// It wraps go-playground/validator with the inventory vocabulary (fiber
// colors, splitter ratios) and reports failures per JSON field name so the
// API can return field-level detail.
//
// # Usage Example
//
//	v := validation.New()
//	result := v.ValidateStruct(&cable)
//	if !result.Valid {
//	    for _, err := range result.Errors {
//	        fmt.Printf("%s: %s\n", err.Field, err.Message)
//	    }
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"evalgo.org/fibertrack/models"
)

// Validator validates inventory structs using their `validate` tags.
type Validator struct {
	structValidator *validator.Validate
}

// ValidationError represents a single validation error with field-level details.
type ValidationError struct {
	// Field is the JSON name of the field that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Fields flattens the result into a field -> message map. When a field fails
// more than one rule the first message wins.
func (r *ValidationResult) Fields() map[string]string {
	fields := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := fields[e.Field]; !seen {
			fields[e.Field] = e.Message
		}
	}
	return fields
}

// New creates a Validator with the inventory rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("fibercolor", func(fl validator.FieldLevel) bool {
		return models.IsFiberColor(fl.Field().String())
	})
	_ = v.RegisterValidation("splitratio", func(fl validator.FieldLevel) bool {
		return models.IsSplitterRatio(fl.Field().String())
	})

	return &Validator{structValidator: v}
}

// ValidateStruct runs the tag rules of s. Nested parent summaries are not
// part of the writable payload and are skipped.
func (v *Validator) ValidateStruct(s interface{}) *ValidationResult {
	err := v.structValidator.Struct(s)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{Field: "document", Message: err.Error()},
			},
		}
	}

	result := &ValidationResult{Valid: false}
	for _, fe := range fieldErrs {
		if isNestedSummary(fe.Namespace()) {
			continue
		}
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName(fe),
			Message: message(fe),
			Value:   fe.Value(),
		})
	}
	result.Valid = len(result.Errors) == 0
	return result
}

// fieldName strips the struct prefix from the namespace, keeping indexes
// for slice elements (ids[2]).
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	// Embedded Lifecycle fields are promoted in JSON.
	return strings.TrimPrefix(ns, "Lifecycle.")
}

func isNestedSummary(namespace string) bool {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 2 {
		return false
	}
	return parts[1] != "Lifecycle"
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", fe.Field())
	case "fibercolor":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(models.FiberColors, ", "))
	case "splitratio":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(models.SplitterRatios, ", "))
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}
