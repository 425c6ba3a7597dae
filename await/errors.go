package await

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidConfiguration is wrapped by every construction and settings
	// validation error.
	ErrInvalidConfiguration = errors.New("invalid await configuration")

	// ErrTimeout matches any *TimeoutError via errors.Is.
	ErrTimeout = errors.New("condition timed out")

	// ErrCancelled matches any *CancelledError via errors.Is.
	ErrCancelled = errors.New("wait cancelled")
)

// ConditionError is returned when the condition failed with an error the
// ignore policy did not cover.
type ConditionError struct {
	Alias     string
	PollCount int
	Elapsed   time.Duration
	Err       error
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("%scondition evaluation failed on poll %d after %s: %v", aliasPrefix(e.Alias), e.PollCount, e.Elapsed, e.Err)
}

func (e *ConditionError) Unwrap() error { return e.Err }

// UncaughtError is returned when another goroutine published a failure on
// the FailureChannel while the wait was running.
type UncaughtError struct {
	Alias     string
	PollCount int
	Elapsed   time.Duration
	Err       error
}

func (e *UncaughtError) Error() string {
	return fmt.Sprintf("%suncaught background failure observed on poll %d after %s: %v", aliasPrefix(e.Alias), e.PollCount, e.Elapsed, e.Err)
}

func (e *UncaughtError) Unwrap() error { return e.Err }

// TimeoutError is returned when the maximum wait time elapsed without a
// qualifying match.
type TimeoutError struct {
	Alias       string
	Description string
	Value       string
	HasValue    bool
	PollCount   int
	Elapsed     time.Duration
	MaxWait     Duration
}

func (e *TimeoutError) Error() string {
	var b strings.Builder
	if e.Alias != "" {
		fmt.Fprintf(&b, "Condition with alias '%s' didn't complete within %s because %s.", e.Alias, e.MaxWait, decapitalize(e.Description))
	} else {
		fmt.Fprintf(&b, "%s within %s.", capitalize(e.Description), e.MaxWait)
	}
	if e.HasValue {
		fmt.Fprintf(&b, " Last value was %s.", e.Value)
	}
	fmt.Fprintf(&b, " Elapsed %d ms over %d polls.", e.Elapsed.Milliseconds(), e.PollCount)
	return b.String()
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// CancelledError is returned when the context was done before the wait
// completed. It wraps the context error.
type CancelledError struct {
	Alias     string
	PollCount int
	Elapsed   time.Duration
	Err       error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%swait cancelled after %s (%d polls): %v", aliasPrefix(e.Alias), e.Elapsed, e.PollCount, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }

// TerminalFailureError is returned when the fail-fast condition reported a
// state from which the awaited condition can never become true.
type TerminalFailureError struct {
	Alias     string
	Reason    string
	PollCount int
	Elapsed   time.Duration
	Err       error
}

func (e *TerminalFailureError) Error() string {
	msg := fmt.Sprintf("%s%s", aliasPrefix(e.Alias), e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TerminalFailureError) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a panic.
type PanicError struct {
	Value interface{}
	Stack []byte
}

// NewPanicError captures the current stack. It is meant to be called from
// the deferred function that recovered r.
func NewPanicError(r interface{}) *PanicError {
	return &PanicError{Value: r, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func aliasPrefix(alias string) string {
	if alias == "" {
		return ""
	}
	return fmt.Sprintf("[%s] ", alias)
}

func decapitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
