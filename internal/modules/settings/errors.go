package settings

import "errors"

var ErrValidation = errors.New("settings validation failed")

// ValidationError carries field-level and logo errors. Nothing is saved when it is returned.
type ValidationError struct {
	Fields   map[string]string `json:"fields,omitempty"`
	Messages []string          `json:"messages,omitempty"`
}

func (e *ValidationError) Error() string { return ErrValidation.Error() }

func (e *ValidationError) Unwrap() error { return ErrValidation }
