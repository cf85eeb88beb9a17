package autofill

import (
	"fmt"
	"strings"
)

// AssignerError describes a failed auto-fill call.
type AssignerError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *AssignerError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 3)
	parts = append(parts, "auto-fill error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *AssignerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
