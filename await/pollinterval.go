package await

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"mfycheng.dev/retry/backoff"
)

// PollInterval produces the time to wait before the next evaluation.
//
// pollCount starts at 1. Implementations must be pure functions of their
// inputs.
type PollInterval interface {
	Next(pollCount int, previous Duration) Duration
}

// PollIntervalFunc adapts a function to a PollInterval.
type PollIntervalFunc func(pollCount int, previous Duration) Duration

// Next implements PollInterval.Next.
func (f PollIntervalFunc) Next(pollCount int, previous Duration) Duration {
	return f(pollCount, previous)
}

// FixedPollInterval waits the same duration between every poll.
type FixedPollInterval struct {
	d Duration
}

var _ PollInterval = FixedPollInterval{}

// NewFixedPollInterval returns a fixed poll interval of d.
func NewFixedPollInterval(d Duration) (FixedPollInterval, error) {
	switch {
	case !d.IsDefined():
		return FixedPollInterval{}, errors.Wrap(ErrInvalidConfiguration, "poll interval cannot be undefined")
	case d.IsForever():
		return FixedPollInterval{}, errors.Wrap(ErrInvalidConfiguration, "cannot use a fixed poll interval of length forever")
	case d.IsSameAsPollInterval():
		return FixedPollInterval{}, errors.Wrap(ErrInvalidConfiguration, "cannot use SameAsPollInterval as a fixed poll interval")
	}
	return FixedPollInterval{d: d}, nil
}

// MustFixedPollInterval is like NewFixedPollInterval but panics on error.
func MustFixedPollInterval(d Duration) FixedPollInterval {
	p, err := NewFixedPollInterval(d)
	if err != nil {
		panic(err)
	}
	return p
}

// Next implements PollInterval.Next.
func (p FixedPollInterval) Next(_ int, _ Duration) Duration {
	return p.d
}

func (p FixedPollInterval) String() string {
	return fmt.Sprintf("fixed(%s)", p.d)
}

// FibonacciPollInterval waits fib(offset+pollCount) units between polls.
type FibonacciPollInterval struct {
	offset int
	unit   time.Duration
}

var _ PollInterval = FibonacciPollInterval{}

// NewFibonacciPollInterval returns a Fibonacci backoff. The offset must be
// at least -1.
func NewFibonacciPollInterval(offset int, unit time.Duration) (FibonacciPollInterval, error) {
	if offset < -1 {
		return FibonacciPollInterval{}, errors.Wrapf(ErrInvalidConfiguration, "fibonacci offset must be greater than or equal to -1 (was %d)", offset)
	}
	if unit <= 0 {
		return FibonacciPollInterval{}, errors.Wrap(ErrInvalidConfiguration, "fibonacci time unit must be positive")
	}
	return FibonacciPollInterval{offset: offset, unit: unit}, nil
}

// Fibonacci returns a Fibonacci backoff in milliseconds with no offset.
func Fibonacci() FibonacciPollInterval {
	return FibonacciPollInterval{unit: time.Millisecond}
}

// Next implements PollInterval.Next.
func (p FibonacciPollInterval) Next(pollCount int, _ Duration) Duration {
	return Duration{amount: fibonacci(p.offset + pollCount), unit: p.unit}
}

func (p FibonacciPollInterval) String() string {
	return fmt.Sprintf("fibonacci(offset=%d, unit=%s)", p.offset, p.unit)
}

// fibonacci is iterative; results past fib(92) saturate at math.MaxInt64.
func fibonacci(n int) int64 {
	if n <= 0 {
		return 0
	}
	if n > 92 {
		return math.MaxInt64
	}

	var previous, current int64 = 0, 1
	for i := 1; i < n; i++ {
		previous, current = current, previous+current
	}
	return current
}

// IteratePollInterval derives each interval from the previous one.
type IteratePollInterval struct {
	f     func(previous Duration) Duration
	start Duration
}

var _ PollInterval = IteratePollInterval{}

// NewIteratePollInterval returns an interval computed as f(previous). When no
// previous duration is known, f is applied to start. An undefined start
// defaults to 100 milliseconds.
func NewIteratePollInterval(f func(previous Duration) Duration, start Duration) (IteratePollInterval, error) {
	if f == nil {
		return IteratePollInterval{}, errors.Wrap(ErrInvalidConfiguration, "iterate function cannot be nil")
	}
	if start.IsForever() || start.IsSameAsPollInterval() {
		return IteratePollInterval{}, errors.Wrapf(ErrInvalidConfiguration, "invalid iterate start duration: %s", start)
	}
	if !start.IsDefined() {
		start = OneHundredMilliseconds
	}
	return IteratePollInterval{f: f, start: start}, nil
}

// Next implements PollInterval.Next.
func (p IteratePollInterval) Next(_ int, previous Duration) Duration {
	if !previous.IsDefined() || previous.IsSameAsPollInterval() {
		previous = p.start
	}
	return p.f(previous)
}

// BackoffPollInterval adapts a retry backoff strategy. The poll count is used
// as the attempt number.
func BackoffPollInterval(strategy backoff.Strategy) PollInterval {
	return PollIntervalFunc(func(pollCount int, _ Duration) Duration {
		if pollCount < 0 {
			pollCount = 0
		}
		d := strategy(uint(pollCount))
		if d < 0 {
			d = 0
		}
		return Duration{amount: int64(d), unit: time.Nanosecond}
	})
}
