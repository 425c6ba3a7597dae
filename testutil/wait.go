package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-await/await"
)

type tHelper interface {
	Helper()
}

// WaitFor waits for a condition to be met before the specified timeout
func WaitFor(timeout, interval time.Duration, condition func() bool) error {
	if timeout < interval {
		return errors.New("timeout must be greater than interval")
	}

	f, err := newFactory(timeout, interval)
	if err != nil {
		return err
	}
	return f.UntilTrue(context.Background(), condition)
}

// Eventually fails the test unless condition returns true within timeout,
// polling every interval.
func Eventually(t require.TestingT, timeout, interval time.Duration, condition func() bool, msgAndArgs ...interface{}) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	require.NoError(t, WaitFor(timeout, interval, condition), msgAndArgs...)
}

// EventuallyValue fails the test unless supplier produces a value satisfying
// matcher within timeout. The last supplied value is returned.
func EventuallyValue[T any](t require.TestingT, timeout, interval time.Duration, supplier await.Supplier[T], matcher await.Matcher[T], msgAndArgs ...interface{}) T {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	f, err := newFactory(timeout, interval)
	require.NoError(t, err)

	v, err := await.UntilValue(context.Background(), f, supplier, matcher)
	require.NoError(t, err, msgAndArgs...)
	return v
}

// Consistently fails the test if condition returns false at any poll during
// d. The first poll happens immediately.
func Consistently(t require.TestingT, d, interval time.Duration, condition func() bool, msgAndArgs ...interface{}) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	f, err := newFactory(2*d+interval, interval)
	require.NoError(t, err)

	min, err := await.Of(d)
	require.NoError(t, err)

	err = f.AtLeast(min).
		PollDelay(await.Zero).
		FailFast(fmt.Sprintf("condition stopped holding within %s", d), func() bool { return !condition() }).
		UntilTrue(context.Background(), condition)
	require.NoError(t, err, msgAndArgs...)
}

func newFactory(timeout, interval time.Duration) (*await.Factory, error) {
	max, err := await.Of(timeout)
	if err != nil {
		return nil, errors.Wrap(err, "invalid timeout")
	}
	every, err := await.Of(interval)
	if err != nil {
		return nil, errors.Wrap(err, "invalid interval")
	}

	return await.New().AtMost(max).PollEvery(every), nil
}
