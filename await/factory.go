package await

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// Factory builds waits fluently. Every method returns a modified copy, so a
// Factory can be shared and specialized freely:
//
//	ready := await.New().AtMost(await.FiveSeconds).PollEvery(await.OneHundredMilliseconds)
//	err := ready.Alias("leader elected").UntilTrue(ctx, cluster.HasLeader)
//
// Configuration errors are deferred until a terminal Until* method is
// called.
type Factory struct {
	s   Settings
	err error
}

// New returns a Factory with the factory defaults of DefaultConfig.
func New() *Factory {
	return DefaultConfig().Await()
}

func newFactory(s Settings) *Factory {
	return &Factory{s: s}
}

func (f *Factory) with(mutate func(s *Settings)) *Factory {
	c := *f
	mutate(&c.s)
	return &c
}

func (f *Factory) fail(err error) *Factory {
	c := *f
	if c.err == nil {
		c.err = err
	}
	return &c
}

// Alias names the wait in log entries, listener records and errors.
func (f *Factory) Alias(alias string) *Factory {
	return f.with(func(s *Settings) { s.Alias = alias })
}

// AtMost sets the maximum wait time.
func (f *Factory) AtMost(d Duration) *Factory {
	return f.with(func(s *Settings) { s.Constraint = s.Constraint.WithMaxWaitTime(d) })
}

// AtLeast sets the minimum wait time. A match observed earlier keeps the
// wait polling.
func (f *Factory) AtLeast(d Duration) *Factory {
	return f.with(func(s *Settings) { s.Constraint = s.Constraint.WithMinWaitTime(d) })
}

func (f *Factory) Between(min, max Duration) *Factory {
	return f.AtLeast(min).AtMost(max)
}

// During requires the condition to hold continuously for d before the wait
// succeeds.
func (f *Factory) During(d Duration) *Factory {
	return f.with(func(s *Settings) { s.Constraint = s.Constraint.WithHoldPredicateTime(d) })
}

// Forever removes the maximum wait time. Such a wait only ends on a match, a
// failure, or cancellation of its context.
func (f *Factory) Forever() *Factory {
	return f.AtMost(Forever)
}

func (f *Factory) PollInterval(p PollInterval) *Factory {
	if p == nil {
		return f.fail(errors.Wrap(ErrInvalidConfiguration, "poll interval cannot be nil"))
	}
	return f.with(func(s *Settings) { s.PollInterval = p })
}

// PollEvery uses a fixed poll interval of d.
func (f *Factory) PollEvery(d Duration) *Factory {
	p, err := NewFixedPollInterval(d)
	if err != nil {
		return f.fail(err)
	}
	return f.PollInterval(p)
}

func (f *Factory) PollDelay(d Duration) *Factory {
	return f.with(func(s *Settings) { s.PollDelay = d })
}

// Ignore extends the ignore policy with rules.
func (f *Factory) Ignore(rules ...IgnoreRule) *Factory {
	return f.with(func(s *Settings) { s.IgnorePolicy = s.IgnorePolicy.With(rules...) })
}

func (f *Factory) IgnoreErrors(targets ...error) *Factory {
	return f.Ignore(IgnoreErrors(targets...))
}

func (f *Factory) IgnoreErrorsMatching(predicate func(error) bool) *Factory {
	return f.Ignore(IgnoreErrorsMatching(predicate))
}

func (f *Factory) IgnoreAllErrors() *Factory {
	return f.Ignore(IgnoreAllErrors())
}

// IgnoreNothing clears the ignore policy.
func (f *Factory) IgnoreNothing() *Factory {
	return f.with(func(s *Settings) { s.IgnorePolicy = IgnoreNothing })
}

func (f *Factory) Listener(l Listener) *Factory {
	return f.with(func(s *Settings) { s.Listener = l })
}

// FailFast aborts the wait with a *TerminalFailureError as soon as cond
// returns true.
func (f *Factory) FailFast(reason string, cond func() bool) *Factory {
	if cond == nil {
		return f.fail(errors.Wrap(ErrInvalidConfiguration, "fail fast condition cannot be nil"))
	}
	return f.with(func(s *Settings) {
		s.FailFast = &FailFast{
			Reason:    reason,
			Condition: func() (bool, error) { return cond(), nil },
		}
	})
}

func (f *Factory) CatchUncaught() *Factory {
	return f.with(func(s *Settings) { s.CatchUncaught = true })
}

func (f *Factory) DontCatchUncaught() *Factory {
	return f.with(func(s *Settings) { s.CatchUncaught = false })
}

func (f *Factory) FailureChannel(ch *FailureChannel) *Factory {
	return f.with(func(s *Settings) { s.Failures = ch })
}

func (f *Factory) Logger(log *logrus.Entry) *Factory {
	return f.with(func(s *Settings) { s.Log = log })
}

// Settings returns the settings a terminal method would use.
func (f *Factory) Settings() (Settings, error) {
	if f.err != nil {
		return Settings{}, f.err
	}
	return f.s, f.s.Validate()
}

// Until waits for cond.
func (f *Factory) Until(ctx context.Context, cond Condition) error {
	if f.err != nil {
		return f.err
	}
	return Await(ctx, cond, f.s)
}

// UntilTrue waits for cond to return true.
func (f *Factory) UntilTrue(ctx context.Context, cond func() bool) error {
	if cond == nil {
		return errors.Wrap(ErrInvalidConfiguration, "condition cannot be nil")
	}
	return f.Until(ctx, BoolConditionFunc(cond))
}

// UntilNoError waits for fn to return nil.
func (f *Factory) UntilNoError(ctx context.Context, fn func() error) error {
	if fn == nil {
		return errors.Wrap(ErrInvalidConfiguration, "function cannot be nil")
	}
	return f.Until(ctx, NoErrorCondition(fn))
}

// UntilAsserted waits for fn to record no assertion failures:
//
//	err := f.UntilAsserted(ctx, func(t require.TestingT) {
//		assert.Equal(t, 3, counter.Load())
//	})
func (f *Factory) UntilAsserted(ctx context.Context, fn func(t require.TestingT)) error {
	if fn == nil {
		return errors.Wrap(ErrInvalidConfiguration, "assertion cannot be nil")
	}
	return f.Until(ctx, AssertionCondition(fn))
}

// UntilValue waits for the value produced by supplier to satisfy matcher and
// returns the last supplied value.
func UntilValue[T any](ctx context.Context, f *Factory, supplier Supplier[T], matcher Matcher[T]) (T, error) {
	var zero T
	if supplier == nil || matcher == nil {
		return zero, errors.Wrap(ErrInvalidConfiguration, "supplier and matcher cannot be nil")
	}

	cond := NewValueCondition(supplier, matcher)
	err := f.Until(ctx, cond)
	v, _ := cond.Last()
	return v, err
}

// UntilEqual waits for supplier to produce expected.
func UntilEqual[T comparable](ctx context.Context, f *Factory, supplier Supplier[T], expected T) (T, error) {
	return UntilValue[T](ctx, f, supplier, equalMatcher[T]{expected: expected})
}
