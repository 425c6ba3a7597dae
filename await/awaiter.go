package await

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type state int

const (
	statePending state = iota
	stateDelaying
	stateEvaluating
	stateMatched
	stateTimedOut
	stateFailed
)

func (s state) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateDelaying:
		return "delaying"
	case stateEvaluating:
		return "evaluating"
	case stateMatched:
		return "matched"
	case stateTimedOut:
		return "timed_out"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const ignoredErrorDescription = "condition evaluation failed with an ignored error"

// Await blocks until cond is satisfied according to settings, the maximum
// wait time elapses, or ctx is done.
//
// The returned error is nil on success, or one of *ConditionError,
// *UncaughtError, *TimeoutError, *CancelledError and *TerminalFailureError.
// Invalid settings yield an error wrapping ErrInvalidConfiguration before any
// evaluation takes place.
func Await(ctx context.Context, cond Condition, settings Settings) (err error) {
	if cond == nil {
		return errors.Wrap(ErrInvalidConfiguration, "condition cannot be nil")
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	w := newWaiter(cond, settings)
	defer func() {
		w.log.WithFields(logrus.Fields{
			"state":      w.state.String(),
			"poll_count": w.pollCount,
			"elapsed":    time.Since(w.start),
		}).Debug("wait finished")

		w.notify.completed(CompletionEvent{
			WaitID:    w.id,
			Alias:     settings.Alias,
			PollCount: w.pollCount,
			Elapsed:   time.Since(w.start),
			Err:       err,
		})
	}()

	return w.run(ctx)
}

type waiter struct {
	id     string
	cond   Condition
	s      Settings
	log    *logrus.Entry
	notify notifier

	state     state
	start     time.Time
	pollCount int
	// last is the most recent evaluation that did not fail, so ignored
	// errors do not hide the last observed value.
	last       Evaluation
	sawIgnored bool
}

func newWaiter(cond Condition, s Settings) *waiter {
	id := uuid.New().String()
	log := s.logger().WithField("wait_id", id)
	if s.Alias != "" {
		log = log.WithField("alias", s.Alias)
	}

	return &waiter{
		id:     id,
		cond:   cond,
		s:      s,
		log:    log,
		notify: notifier{log: log, listener: s.Listener},
		state:  statePending,
	}
}

func (w *waiter) run(ctx context.Context) error {
	maxWait := w.s.Constraint.MaxWaitTime()
	minWait := w.s.Constraint.MinWaitTime().Std()
	hold, hasHold := w.s.Constraint.HoldPredicateTime()

	delay := w.resolvePollDelay()

	w.start = time.Now()
	w.log.WithFields(logrus.Fields{
		"max_wait":   maxWait.String(),
		"poll_delay": delay.String(),
	}).Debug("starting wait")
	w.notify.started(StartEvent{
		WaitID:    w.id,
		Alias:     w.s.Alias,
		MaxWait:   maxWait,
		PollDelay: delay,
	})

	w.state = stateDelaying
	if err := w.sleep(ctx, delay, maxWait); err != nil {
		return err
	}

	var holdingSince time.Time
	for {
		w.pollCount++
		w.state = stateEvaluating

		if err := w.checkFailFast(); err != nil {
			w.state = stateFailed
			return err
		}

		eval, err := w.evaluate()
		if err != nil {
			if !w.s.IgnorePolicy.ShouldIgnore(err) {
				w.state = stateFailed
				return &ConditionError{
					Alias:     w.s.Alias,
					PollCount: w.pollCount,
					Elapsed:   time.Since(w.start),
					Err:       err,
				}
			}

			w.ignored(err)
			w.sawIgnored = true
			eval = Evaluation{Description: ignoredErrorDescription}
		} else {
			w.last = eval
		}

		if w.s.CatchUncaught {
			if uerr := w.s.failures().Consume(w.start); uerr != nil {
				if !w.s.IgnorePolicy.ShouldIgnore(uerr) {
					w.state = stateFailed
					return &UncaughtError{
						Alias:     w.s.Alias,
						PollCount: w.pollCount,
						Elapsed:   time.Since(w.start),
						Err:       uerr,
					}
				}
				w.ignored(uerr)
			}
		}

		now := time.Now()
		elapsed := now.Sub(w.start)
		w.notify.evaluated(w.record(eval, elapsed, delay, maxWait))

		if eval.Matched {
			if holdingSince.IsZero() {
				holdingSince = now
			}
			held := !hasHold || now.Sub(holdingSince) >= hold.Std()
			if held && elapsed >= minWait {
				w.state = stateMatched
				return nil
			}
		} else {
			holdingSince = time.Time{}
		}

		if !maxWait.IsForever() && elapsed >= maxWait.Std() {
			w.state = stateTimedOut
			return w.timeout(elapsed, maxWait)
		}

		delay = w.s.PollInterval.Next(w.pollCount+1, delay)
		if err := w.sleep(ctx, delay, maxWait); err != nil {
			return err
		}
	}
}

func (w *waiter) resolvePollDelay() Duration {
	d := w.s.PollDelay
	if !d.IsDefined() || d.IsSameAsPollInterval() {
		d = w.s.PollInterval.Next(1, Duration{})
	}
	return d
}

// sleep waits for d, but never past the maximum wait time, and returns a
// *CancelledError if ctx is done first.
func (w *waiter) sleep(ctx context.Context, d Duration, maxWait Duration) error {
	var wait time.Duration
	if d.IsDefined() && !d.IsSameAsPollInterval() {
		wait = d.Std()
	}
	if !maxWait.IsForever() {
		if remaining := maxWait.Std() - time.Since(w.start); remaining < wait {
			wait = remaining
		}
	}

	if wait <= 0 {
		select {
		case <-ctx.Done():
			return w.cancelled(ctx.Err())
		default:
			return nil
		}
	}

	t := time.NewTimer(wait)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return w.cancelled(ctx.Err())
	case <-t.C:
		return nil
	}
}

func (w *waiter) evaluate() (e Evaluation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPanicError(r)
		}
	}()
	return w.cond.Evaluate()
}

func (w *waiter) checkFailFast() (err error) {
	ff := w.s.FailFast
	if ff == nil {
		return nil
	}

	reason := ff.Reason
	if reason == "" {
		reason = defaultFailFastReason
	}

	defer func() {
		if r := recover(); r != nil {
			err = w.terminal(reason, NewPanicError(r))
		}
	}()

	triggered, ffErr := ff.Condition()
	if ffErr != nil {
		return w.terminal(reason, ffErr)
	}
	if triggered {
		return w.terminal(reason, nil)
	}
	return nil
}

func (w *waiter) terminal(reason string, cause error) error {
	return &TerminalFailureError{
		Alias:     w.s.Alias,
		Reason:    reason,
		PollCount: w.pollCount,
		Elapsed:   time.Since(w.start),
		Err:       cause,
	}
}

func (w *waiter) ignored(err error) {
	w.log.WithError(err).WithField("poll_count", w.pollCount).Trace("ignoring error")
	w.notify.ignored(IgnoredEvent{
		WaitID:    w.id,
		Alias:     w.s.Alias,
		PollCount: w.pollCount,
		Elapsed:   time.Since(w.start),
		Err:       err,
	})
}

func (w *waiter) cancelled(cause error) error {
	w.state = stateFailed
	return &CancelledError{
		Alias:     w.s.Alias,
		PollCount: w.pollCount,
		Elapsed:   time.Since(w.start),
		Err:       cause,
	}
}

func (w *waiter) timeout(elapsed time.Duration, maxWait Duration) error {
	description := w.last.Description
	switch {
	case description != "":
	case w.sawIgnored:
		description = ignoredErrorDescription
	default:
		description = "condition was not fulfilled"
	}

	err := &TimeoutError{
		Alias:       w.s.Alias,
		Description: description,
		Value:       w.last.Value,
		HasValue:    w.last.HasValue,
		PollCount:   w.pollCount,
		Elapsed:     elapsed,
		MaxWait:     maxWait,
	}
	w.notify.timedOut(TimeoutEvent{
		WaitID:  w.id,
		Alias:   w.s.Alias,
		Message: err.Error(),
		Elapsed: elapsed,
	})
	return err
}

func (w *waiter) record(e Evaluation, elapsed time.Duration, interval Duration, maxWait Duration) EvaluationRecord {
	remaining := time.Duration(-1)
	if !maxWait.IsForever() {
		remaining = maxWait.Std() - elapsed
		if remaining < 0 {
			remaining = 0
		}
	}

	return EvaluationRecord{
		WaitID:       w.id,
		Alias:        w.s.Alias,
		PollCount:    w.pollCount,
		Elapsed:      elapsed,
		Remaining:    remaining,
		PollInterval: interval,
		Description:  e.Description,
		Value:        e.Value,
		HasValue:     e.HasValue,
		Matched:      e.Matched,
	}
}
