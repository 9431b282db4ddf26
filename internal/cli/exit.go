package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/dustnbones/internal/httpx"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitUserError   = 1 // bad input, unknown route, rejected request
	ExitSystemError = 2 // backend unreachable, storage failure
)

// ExitError carries the exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func userError(message string, err error) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message, Err: err}
}

func systemError(message string, err error) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message, Err: err}
}

// apiError classifies a failed backend call. The backend rejecting a request
// is the user's problem; anything else is a system error.
func apiError(message string, err error) *ExitError {
	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError {
		return userError(message, err)
	}
	if errors.Is(err, types.ErrInvalidID) {
		return userError(message, err)
	}
	return systemError(message, err)
}

// ExitCode maps err to a process exit code. Errors that carry no code, such
// as cobra's argument errors, are user errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUserError
}
