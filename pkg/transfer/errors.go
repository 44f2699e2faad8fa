package transfer

import (
	"errors"
	"fmt"
)

// ErrPackageManager is matched by every *Error with errors.Is
var ErrPackageManager = errors.New("package manager request failed")

// Error reports a failed package manager interaction. Body holds the raw
// server response when one was received.
type Error struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Op + " failed"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrPackageManager) match any transfer error
func (e *Error) Is(target error) bool {
	return target == ErrPackageManager
}
