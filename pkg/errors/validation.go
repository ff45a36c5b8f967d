package errors

import "strings"

// ValidationError is a user-correctable rejection. It carries the messages
// shown back to the caller and never implies a state change.
type ValidationError struct {
	Messages []string
}

// NewValidation returns nil when no messages are given, so callers can build
// the list and return the result unconditionally.
func NewValidation(messages ...string) *ValidationError {
	var kept []string
	for _, m := range messages {
		if strings.TrimSpace(m) != "" {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &ValidationError{Messages: kept}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Code lets transport layers treat ValidationError like an AppError.
func (e *ValidationError) Code() ErrorCode {
	return ErrCodeValidation
}

// ValidationMessages returns the messages of the first ValidationError in err's
// chain, or nil.
func ValidationMessages(err error) []string {
	var ve *ValidationError
	if As(err, &ve) {
		return ve.Messages
	}
	return nil
}

//Personal.AI order the ending
