package huitzo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandError is a deliberate business failure (e.g. unknown lead id).
// The runtime never retries it.
type CommandError struct {
	Message string
	Details map[string]any
}

func (e *CommandError) Error() string {
	return e.Message
}

// NewCommandError builds a CommandError with optional detail pairs.
func NewCommandError(message string, details map[string]any) *CommandError {
	return &CommandError{Message: message, Details: details}
}

// ValidationError rejects malformed command arguments.
// The runtime never retries it.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator is implemented by argument structs that check their own fields.
type Validator interface {
	Validate() error
}

// DecodeArgs unmarshals raw JSON into v and runs its Validate method when
// present. Failures surface as *ValidationError.
func DecodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ValidationError{Field: "args", Value: string(raw), Message: err.Error()}
	}
	if val, ok := v.(Validator); ok {
		if err := val.Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return ve
			}
			return &ValidationError{Field: "args", Message: err.Error()}
		}
	}
	return nil
}

// IsFatal reports whether err must not be retried by the runtime.
func IsFatal(err error) bool {
	var ce *CommandError
	var ve *ValidationError
	return errors.As(err, &ce) || errors.As(err, &ve)
}
