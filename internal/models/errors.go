package models

import "fmt"

// ValidationError reports a rejected control value. It unwraps to the
// underlying cause so callers can match watermark sentinels.
type ValidationError struct {
	Parameter string
	Value     interface{}
	Err       error
}

func NewValidationError(parameter string, value interface{}, err error) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %v",
		ve.Parameter, ve.Value, ve.Err)
}

func (ve *ValidationError) Unwrap() error {
	return ve.Err
}
