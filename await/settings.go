package await

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FailFast aborts a wait as soon as Condition reports true, for states from
// which the awaited condition can never be reached.
type FailFast struct {
	Reason    string
	Condition func() (bool, error)
}

const defaultFailFastReason = "fail fast condition triggered"

// Settings fully describe a single wait.
type Settings struct {
	Alias      string
	Constraint WaitConstraint

	PollInterval PollInterval
	// PollDelay is the time before the first evaluation. An undefined value
	// behaves like SameAsPollInterval.
	PollDelay Duration

	IgnorePolicy IgnorePolicy
	Listener     Listener

	// CatchUncaught makes failures published on Failures abort the wait.
	CatchUncaught bool
	Failures      *FailureChannel

	FailFast *FailFast

	Log *logrus.Entry
}

// Validate reports configuration errors. They wrap ErrInvalidConfiguration.
func (s Settings) Validate() error {
	if err := s.Constraint.Validate(); err != nil {
		return err
	}
	if s.PollInterval == nil {
		return errors.Wrap(ErrInvalidConfiguration, "poll interval must be specified")
	}
	if s.PollDelay.IsForever() {
		return errors.Wrap(ErrInvalidConfiguration, "poll delay cannot be forever")
	}
	if s.FailFast != nil && s.FailFast.Condition == nil {
		return errors.Wrap(ErrInvalidConfiguration, "fail fast condition cannot be nil")
	}
	return nil
}

func (s Settings) failures() *FailureChannel {
	if s.Failures == nil {
		return DefaultFailureChannel
	}
	return s.Failures
}

func (s Settings) logger() *logrus.Entry {
	if s.Log == nil {
		return logrus.StandardLogger().WithField("type", "await")
	}
	return s.Log
}
