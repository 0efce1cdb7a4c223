package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Violation is a single failed constraint addressed by its field path.
type Violation struct {
	// Path is the JSON path of the offending field relative to the validated value.
	Path []string `json:"path"`

	// Rule is the machine-readable constraint name (required, max, gtfield, ...).
	Rule string `json:"rule"`

	// Message is the human-readable text shown next to the form field.
	Message string `json:"message"`
}

// PathString joins the path with dots (items.0.amount).
func (v Violation) PathString() string {
	return strings.Join(v.Path, ".")
}

// ValidationError collects every violated constraint of one validation run.
type ValidationError struct {
	Violations []Violation
}

// Error implements error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("validation failed: %s: %s", v.PathString(), v.Message)
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.PathString()+": "+v.Message)
	}
	return fmt.Sprintf("validation failed (%d violations): %s", len(e.Violations), strings.Join(parts, "; "))
}

// Has reports whether a violation exists for the exact path.
func (e *ValidationError) Has(path ...string) bool {
	_, ok := e.For(path...)
	return ok
}

// For returns the first violation recorded for the exact path.
func (e *ValidationError) For(path ...string) (Violation, bool) {
	want := strings.Join(path, ".")
	for _, v := range e.Violations {
		if v.PathString() == want {
			return v, true
		}
	}
	return Violation{}, false
}

// FieldMessages maps dotted paths to messages, the shape form layers render.
func (e *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		key := v.PathString()
		if _, exists := out[key]; !exists {
			out[key] = v.Message
		}
	}
	return out
}

// AppError converts the violations into a VALIDATION_ERROR AppError.
func (e *ValidationError) AppError() *AppError {
	return NewValidation("validation failed").
		WithDetail("violations", e.Violations).
		WithCause(e)
}

// AsValidationError extracts ValidationError from error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
