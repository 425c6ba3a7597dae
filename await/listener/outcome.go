// Package listener provides await.Listener implementations for logging and
// metrics.
package listener

import (
	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-await/await"
)

// Outcome values used as metric tags and labels.
const (
	OutcomeMatched          = "matched"
	OutcomeTimeout          = "timeout"
	OutcomeCancelled        = "cancelled"
	OutcomeConditionFailure = "condition_failure"
	OutcomeUncaughtFailure  = "uncaught_failure"
	OutcomeTerminalFailure  = "terminal_failure"
	OutcomeUnknown          = "unknown"
)

// Outcome classifies the result of a wait.
func Outcome(err error) string {
	if err == nil {
		return OutcomeMatched
	}

	var (
		timeout   *await.TimeoutError
		cancelled *await.CancelledError
		condition *await.ConditionError
		uncaught  *await.UncaughtError
		terminal  *await.TerminalFailureError
	)
	switch {
	case errors.As(err, &timeout):
		return OutcomeTimeout
	case errors.As(err, &cancelled):
		return OutcomeCancelled
	case errors.As(err, &condition):
		return OutcomeConditionFailure
	case errors.As(err, &uncaught):
		return OutcomeUncaughtFailure
	case errors.As(err, &terminal):
		return OutcomeTerminalFailure
	default:
		return OutcomeUnknown
	}
}
