package await

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(max, interval Duration) Settings {
	return Settings{
		Constraint:    NewWaitConstraint(max),
		PollInterval:  MustFixedPollInterval(interval),
		CatchUncaught: true,
		Failures:      NewFailureChannel(),
	}
}

func fiftyMillis() Duration {
	return MustDuration(50, time.Millisecond)
}

type recordingListener struct {
	sync.Mutex
	events  []string
	records []EvaluationRecord
	ignored []error
	timeout *TimeoutEvent
	done    *CompletionEvent
}

func (l *recordingListener) ConditionEvaluated(r EvaluationRecord) {
	l.Lock()
	defer l.Unlock()
	l.events = append(l.events, "evaluated")
	l.records = append(l.records, r)
}

func (l *recordingListener) BeforeEvaluation(StartEvent) {
	l.Lock()
	defer l.Unlock()
	l.events = append(l.events, "start")
}

func (l *recordingListener) OnTimeout(e TimeoutEvent) {
	l.Lock()
	defer l.Unlock()
	l.events = append(l.events, "timeout")
	l.timeout = &e
}

func (l *recordingListener) ErrorIgnored(e IgnoredEvent) {
	l.Lock()
	defer l.Unlock()
	l.events = append(l.events, "ignored")
	l.ignored = append(l.ignored, e.Err)
}

func (l *recordingListener) WaitCompleted(e CompletionEvent) {
	l.Lock()
	defer l.Unlock()
	l.events = append(l.events, "completed")
	l.done = &e
}

func TestAwait_Matches(t *testing.T) {
	var calls int32
	cond := BoolConditionFunc(func() bool {
		return atomic.AddInt32(&calls, 1) >= 3
	})

	l := &recordingListener{}
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))
	s.Listener = l

	require.NoError(t, Await(context.Background(), cond, s))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))

	assert.Equal(t, []string{"start", "evaluated", "evaluated", "evaluated", "completed"}, l.events)
	for i, r := range l.records {
		assert.Equal(t, i+1, r.PollCount)
		assert.NotEmpty(t, r.WaitID)
		assert.Equal(t, l.records[0].WaitID, r.WaitID)
		assert.False(t, r.RunsForever())
		assert.True(t, r.Remaining <= 2*time.Second)
	}
	assert.True(t, l.records[2].Matched)
	assert.Equal(t, "condition returned true", l.records[2].Description)
	assert.NoError(t, l.done.Err)
	assert.Equal(t, 3, l.done.PollCount)
}

func TestAwait_TimeoutWindow(t *testing.T) {
	interval := fiftyMillis()
	s := testSettings(FiveHundredMilliseconds, interval)

	start := time.Now()
	err := Await(context.Background(), BoolConditionFunc(func() bool { return false }), s)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Elapsed >= 500*time.Millisecond, "elapsed %s", te.Elapsed)
	assert.True(t, te.Elapsed < 500*time.Millisecond+interval.Std(), "elapsed %s", te.Elapsed)
	assert.True(t, elapsed >= 500*time.Millisecond)
	assert.True(t, te.PollCount >= 2)
}

func TestAwait_TimeoutMessage(t *testing.T) {
	s := testSettings(MustDuration(100, time.Millisecond), MustDuration(20, time.Millisecond))
	s.Alias = "queue drained"

	cond := NewValueCondition(func() (int, error) { return 7, nil }, equalMatcher[int]{expected: 0})
	err := Await(context.Background(), cond, s)

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.True(t, strings.HasPrefix(err.Error(), "Condition with alias 'queue drained' didn't complete within 100 milliseconds because expected equal to 0 but was 7."), err.Error())
	assert.Contains(t, err.Error(), "Last value was 7.")
	assert.Equal(t, "7", te.Value)

	s.Alias = ""
	err = Await(context.Background(), DescribedCondition("leader elected", func() (bool, error) { return false, nil }), s)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Leader elected was not fulfilled within 100 milliseconds."), err.Error())
	assert.NotContains(t, err.Error(), "Last value")
}

func TestAwait_HoldPredicateTime(t *testing.T) {
	script := []bool{false, true, true, false, true, true, true}

	var calls int
	cond := BoolConditionFunc(func() bool {
		defer func() { calls++ }()
		if calls < len(script) {
			return script[calls]
		}
		return true
	})

	l := &recordingListener{}
	s := testSettings(FiveSeconds, fiftyMillis())
	s.Constraint = s.Constraint.WithHoldPredicateTime(TwoHundredMilliseconds)
	s.Listener = l

	require.NoError(t, Await(context.Background(), cond, s))

	// the last false sample is poll 4, so the uninterrupted run starts at poll 5
	require.True(t, len(l.records) >= 9)
	firstTrue := l.records[4]
	assert.True(t, firstTrue.Matched)
	assert.False(t, l.records[3].Matched)

	last := l.records[len(l.records)-1]
	assert.True(t, last.Elapsed-firstTrue.Elapsed >= 200*time.Millisecond)
	for _, r := range l.records[4:] {
		assert.True(t, r.Matched)
	}
}

func TestAwait_HoldResetsOnFalse(t *testing.T) {
	// alternates forever, so the hold time is never reached
	var calls int
	cond := BoolConditionFunc(func() bool {
		calls++
		return calls%2 == 0
	})

	s := testSettings(MustDuration(400, time.Millisecond), MustDuration(20, time.Millisecond))
	s.Constraint = s.Constraint.WithHoldPredicateTime(MustDuration(100, time.Millisecond))

	err := Await(context.Background(), cond, s)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestAwait_MinWaitTime(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(20, time.Millisecond))
	s.Constraint = s.Constraint.WithMinWaitTime(MustDuration(200, time.Millisecond))

	start := time.Now()
	require.NoError(t, Await(context.Background(), BoolConditionFunc(func() bool { return true }), s))
	assert.True(t, time.Since(start) >= 200*time.Millisecond)
}

func TestAwait_PollDelay(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))
	s.PollDelay = MustDuration(150, time.Millisecond)

	start := time.Now()
	var first time.Duration
	require.NoError(t, Await(context.Background(), BoolConditionFunc(func() bool {
		first = time.Since(start)
		return true
	}), s))
	assert.True(t, first >= 150*time.Millisecond)

	s.PollDelay = Zero
	start = time.Now()
	require.NoError(t, Await(context.Background(), BoolConditionFunc(func() bool {
		first = time.Since(start)
		return true
	}), s))
	assert.True(t, first < 100*time.Millisecond)
}

func TestAwait_ConditionError(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))
	s.Alias = "reader"

	err := Await(context.Background(), ConditionFunc(func() (bool, error) { return false, io.EOF }), s)

	var ce *ConditionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.PollCount)
	assert.Equal(t, "reader", ce.Alias)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestAwait_IgnoredErrorsTimeOut(t *testing.T) {
	l := &recordingListener{}
	s := testSettings(MustDuration(200, time.Millisecond), MustDuration(20, time.Millisecond))
	s.IgnorePolicy = NewIgnorePolicy(IgnoreErrorsOfType[*retryableError]())
	s.Listener = l

	var calls int
	err := Await(context.Background(), ConditionFunc(func() (bool, error) {
		calls++
		return false, &retryableError{attempt: calls}
	}), s)

	var ce *ConditionError
	assert.False(t, errors.As(err, &ce))
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Len(t, l.ignored, calls)
	assert.Contains(t, strings.ToLower(err.Error()), ignoredErrorDescription)
}

func TestAwait_IgnoredErrorsKeepLastValue(t *testing.T) {
	s := testSettings(MustDuration(100, time.Millisecond), MustDuration(10, time.Millisecond))
	s.IgnorePolicy = NewIgnorePolicy(IgnoreErrors(io.EOF))

	var calls int
	cond := NewValueCondition(func() (int, error) {
		calls++
		if calls%2 == 0 {
			return 0, io.EOF
		}
		return 7, nil
	}, equalMatcher[int]{expected: 8})

	err := Await(context.Background(), cond, s)

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.HasValue)
	assert.Equal(t, "7", te.Value)
	assert.Equal(t, "expected equal to 8 but was 7", te.Description)
	assert.Contains(t, err.Error(), "Last value was 7.")
	assert.NotContains(t, strings.ToLower(err.Error()), ignoredErrorDescription)
}

func TestAwait_MinEqualsMax(t *testing.T) {
	s := testSettings(MustDuration(200, time.Millisecond), MustDuration(30, time.Millisecond))
	s.Constraint = s.Constraint.WithMinWaitTime(MustDuration(200, time.Millisecond))

	var calls int
	start := time.Now()
	err := Await(context.Background(), BoolConditionFunc(func() bool {
		calls++
		return true
	}), s)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, elapsed >= 200*time.Millisecond, "elapsed %s", elapsed)
	assert.True(t, calls > 1, "a match before the minimum wait must keep polling")
}

func TestAwait_IgnoredErrorsThenMatch(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))
	s.IgnorePolicy = NewIgnorePolicy(IgnoreErrors(io.EOF))

	var calls int
	err := Await(context.Background(), ConditionFunc(func() (bool, error) {
		calls++
		if calls < 3 {
			return false, errors.Wrap(io.EOF, "not yet")
		}
		return true, nil
	}), s)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestAwait_Panics(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))

	err := Await(context.Background(), BoolConditionFunc(func() bool { panic("kaboom") }), s)
	var ce *ConditionError
	require.True(t, errors.As(err, &ce))
	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "kaboom", pe.Value)

	s.IgnorePolicy = NewIgnorePolicy(IgnoreErrorsOfType[*PanicError]())
	var calls int
	err = Await(context.Background(), BoolConditionFunc(func() bool {
		calls++
		if calls == 1 {
			panic(io.EOF)
		}
		return true
	}), s)
	require.NoError(t, err)
}

func TestAwait_FailureChannelBeforeStart(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))
	s.Failures.Publish(io.EOF)
	time.Sleep(time.Millisecond)

	var calls int
	err := Await(context.Background(), BoolConditionFunc(func() bool {
		calls++
		return calls >= 3
	}), s)
	require.NoError(t, err)
}

func TestAwait_FailureChannelAfterStart(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))

	published := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		s.Failures.Publish(io.ErrClosedPipe)
		close(published)
	}()

	err := Await(context.Background(), BoolConditionFunc(func() bool {
		select {
		case <-published:
			// would succeed now, but the failure takes precedence
			return true
		default:
			return false
		}
	}), s)

	var ue *UncaughtError
	require.True(t, errors.As(err, &ue))
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
}

func TestAwait_FailureChannelPanickingGoroutine(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))

	err := Await(context.Background(), BoolConditionFunc(func() bool {
		s.Failures.Go(func() { panic("background") })
		return false
	}), s)

	var ue *UncaughtError
	require.True(t, errors.As(err, &ue))
	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "background", pe.Value)
}

func TestAwait_FailureChannelIgnoredOrDisabled(t *testing.T) {
	s := testSettings(MustDuration(300, time.Millisecond), MustDuration(10, time.Millisecond))
	s.CatchUncaught = false

	var calls int
	cond := BoolConditionFunc(func() bool {
		calls++
		if calls == 1 {
			s.Failures.Publish(io.EOF)
		}
		return calls >= 5
	})
	require.NoError(t, Await(context.Background(), cond, s))

	s.CatchUncaught = true
	s.IgnorePolicy = NewIgnorePolicy(IgnoreErrors(io.EOF))
	calls = 0
	require.NoError(t, Await(context.Background(), cond, s))
}

func TestAwait_Cancellation(t *testing.T) {
	s := testSettings(Forever, fiftyMillis())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Await(ctx, BoolConditionFunc(func() bool { return false }), s)
	assert.True(t, time.Since(start) < time.Second)

	var ce *CancelledError
	require.True(t, errors.As(err, &ce))
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestAwait_CancelledBeforeStart(t *testing.T) {
	s := testSettings(TwoSeconds, fiftyMillis())
	s.PollDelay = Zero

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called bool
	err := Await(ctx, BoolConditionFunc(func() bool {
		called = true
		return true
	}), s)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
}

func TestAwait_FailFast(t *testing.T) {
	s := testSettings(TwoSeconds, MustDuration(10, time.Millisecond))

	var calls int
	s.FailFast = &FailFast{
		Reason:    "service crashed",
		Condition: func() (bool, error) { return calls >= 2, nil },
	}

	err := Await(context.Background(), BoolConditionFunc(func() bool {
		calls++
		return false
	}), s)

	var tf *TerminalFailureError
	require.True(t, errors.As(err, &tf))
	assert.Equal(t, "service crashed", tf.Reason)
	assert.Equal(t, 3, tf.PollCount)
	assert.Equal(t, 2, calls)

	s.FailFast = &FailFast{Condition: func() (bool, error) { return false, io.EOF }}
	err = Await(context.Background(), BoolConditionFunc(func() bool { return true }), s)
	require.True(t, errors.As(err, &tf))
	assert.Equal(t, defaultFailFastReason, tf.Reason)
	assert.True(t, errors.Is(err, io.EOF))
}

type panickingListener struct{}

func (panickingListener) ConditionEvaluated(EvaluationRecord) { panic("listener") }
func (panickingListener) OnTimeout(TimeoutEvent) { panic("listener") }
func (panickingListener) WaitCompleted(CompletionEvent) { panic("listener") }

func TestAwait_ListenerPanicsAreIsolated(t *testing.T) {
	s := testSettings(MustDuration(100, time.Millisecond), MustDuration(10, time.Millisecond))
	s.Listener = panickingListener{}

	var calls int
	require.NoError(t, Await(context.Background(), BoolConditionFunc(func() bool {
		calls++
		return calls >= 2
	}), s))

	err := Await(context.Background(), BoolConditionFunc(func() bool { return false }), s)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestAwait_TimeoutHook(t *testing.T) {
	l := &recordingListener{}
	s := testSettings(MustDuration(60, time.Millisecond), MustDuration(20, time.Millisecond))
	s.Listener = MultiListener(nil, l)

	err := Await(context.Background(), BoolConditionFunc(func() bool { return false }), s)
	require.Error(t, err)

	require.NotNil(t, l.timeout)
	assert.Equal(t, err.Error(), l.timeout.Message)
	assert.Equal(t, "timeout", l.events[len(l.events)-2])
	assert.Equal(t, "completed", l.events[len(l.events)-1])
	assert.Equal(t, err, l.done.Err)
}

func TestAwait_InvalidSettings(t *testing.T) {
	var called bool
	cond := BoolConditionFunc(func() bool {
		called = true
		return true
	})

	for _, s := range []Settings{
		{},
		{Constraint: NewWaitConstraint(OneSecond)},
		{Constraint: NewWaitConstraint(OneSecond).WithMinWaitTime(TwoSeconds), PollInterval: Fibonacci()},
		{Constraint: NewWaitConstraint(OneSecond), PollInterval: Fibonacci(), PollDelay: Forever},
		{Constraint: NewWaitConstraint(OneSecond), PollInterval: Fibonacci(), FailFast: &FailFast{}},
	} {
		err := Await(context.Background(), cond, s)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), "unexpected error: %v", err)
	}
	assert.False(t, called)

	err := Await(context.Background(), nil, testSettings(OneSecond, OneMillisecond))
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestAwait_ForeverRecords(t *testing.T) {
	l := &recordingListener{}
	s := testSettings(Forever, OneMillisecond)
	s.Listener = l

	require.NoError(t, Await(context.Background(), BoolConditionFunc(func() bool { return true }), s))
	require.Len(t, l.records, 1)
	assert.True(t, l.records[0].RunsForever())
}
