package control

import (
	"fmt"
	"strings"
)

// modelNotFoundError signals a switch target absent from the installed
// listing. The message enumerates valid alternatives for the caller.
type modelNotFoundError struct {
	name      string
	installed []string
}

func (e modelNotFoundError) Error() string {
	if len(e.installed) == 0 {
		return fmt.Sprintf("model %q not found: no models installed", e.name)
	}
	return fmt.Sprintf("model %q not found: installed models: %s", e.name, strings.Join(e.installed, ", "))
}

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(name string, installed []string) error {
	return modelNotFoundError{name: name, installed: installed}
}

// IsModelNotFound reports whether err indicates an unknown switch target.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// startTimeoutError signals that the target never appeared in the running
// listing within the attempt budget.
type startTimeoutError struct {
	name     string
	attempts int
}

func (e startTimeoutError) Error() string {
	return fmt.Sprintf("model %q failed to start properly after %d checks - try again or check the runtime logs", e.name, e.attempts)
}

// IsStartTimeout reports whether err indicates an exhausted verify budget.
func IsStartTimeout(err error) bool {
	_, ok := err.(startTimeoutError)
	return ok
}

// runtimeUnavailableError signals that the model runtime did not answer,
// so the HTTP layer can return 503 instead of 500.
type runtimeUnavailableError struct {
	op    string
	cause error
}

func (e runtimeUnavailableError) Error() string {
	return fmt.Sprintf("model runtime unavailable during %s: %v", e.op, e.cause)
}

func (e runtimeUnavailableError) Unwrap() error { return e.cause }

// IsRuntimeUnavailable reports whether err indicates an unreachable runtime.
func IsRuntimeUnavailable(err error) bool {
	_, ok := err.(runtimeUnavailableError)
	return ok
}
