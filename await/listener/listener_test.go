package listener

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/metrics"
	"github.com/kinecosystem/agora-await/metrics/memory"
)

func testFactory() *await.Factory {
	return await.New().
		AtMost(await.TwoSeconds).
		PollEvery(await.MustDuration(5, time.Millisecond)).
		FailureChannel(await.NewFailureChannel())
}

func trueAfter(n int) func() bool {
	var calls int
	return func() bool {
		calls++
		return calls >= n
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeMatched, Outcome(nil))
	assert.Equal(t, OutcomeTimeout, Outcome(&await.TimeoutError{}))
	assert.Equal(t, OutcomeCancelled, Outcome(errors.Wrap(&await.CancelledError{}, "wrapped")))
	assert.Equal(t, OutcomeConditionFailure, Outcome(&await.ConditionError{Err: io.EOF}))
	assert.Equal(t, OutcomeUncaughtFailure, Outcome(&await.UncaughtError{Err: io.EOF}))
	assert.Equal(t, OutcomeTerminalFailure, Outcome(&await.TerminalFailureError{}))
	assert.Equal(t, OutcomeUnknown, Outcome(io.EOF))
}

func TestLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	l := NewLogger(logrus.NewEntry(logger), logrus.DebugLevel)
	err := testFactory().Alias("logged").Listener(l).UntilTrue(context.Background(), trueAfter(2))
	require.NoError(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 4)

	assert.Equal(t, "wait started", entries[0].Message)
	assert.Equal(t, "condition returned false", entries[1].Message)
	assert.Equal(t, "condition returned true", entries[2].Message)
	assert.Equal(t, "wait completed", entries[3].Message)

	for _, e := range entries {
		assert.Equal(t, logrus.DebugLevel, e.Level)
		assert.Equal(t, "logged", e.Data["alias"])
		assert.NotEmpty(t, e.Data["wait_id"])
	}
	assert.Equal(t, 2, entries[2].Data["poll_count"])
	assert.Equal(t, true, entries[2].Data["matched"])
	assert.Equal(t, OutcomeMatched, entries[3].Data["outcome"])
}

func TestLogger_Timeout(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	l := NewLogger(logrus.NewEntry(logger), logrus.DebugLevel)

	err := testFactory().
		AtMost(await.MustDuration(30, time.Millisecond)).
		Listener(l).
		UntilNoError(context.Background(), func() error { return io.ErrUnexpectedEOF })
	require.Error(t, err)

	// only warn and info entries pass the default level
	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, err.Error(), entries[0].Message)
	assert.Equal(t, "wait failed", entries[1].Message)
	assert.Equal(t, OutcomeTimeout, entries[1].Data["outcome"])
}

func TestMetrics(t *testing.T) {
	client, err := metrics.CreateClient(memory.ClientType, &metrics.ClientConfig{Namespace: "test"})
	require.NoError(t, err)

	m, err := NewMetrics(client, metrics.WithServiceTag("listener_test"))
	require.NoError(t, err)
	defer m.Close()

	f := testFactory().Listener(m)
	require.NoError(t, f.UntilTrue(context.Background(), trueAfter(3)))

	var calls int
	err = f.AtMost(await.MustDuration(30, time.Millisecond)).
		UntilNoError(context.Background(), func() error { return io.EOF })
	require.Error(t, err)

	err = f.IgnoreAllErrors().Until(context.Background(), await.ConditionFunc(func() (bool, error) {
		calls++
		if calls == 1 {
			return false, io.EOF
		}
		return true, nil
	}))
	require.NoError(t, err)

	assert.EqualValues(t, 0, m.InFlight())

	mem := client.(*memory.Client)
	counts := make(map[string]int64)
	var outcomes []string
	for _, r := range mem.CountRecords() {
		counts[r.Name] += r.Value
		if r.Name == "test_await_waits" {
			assert.Contains(t, r.Tags, "service:listener_test")
			outcomes = append(outcomes, r.Tags[len(r.Tags)-1])
		}
	}
	assert.EqualValues(t, 3, counts["test_await_waits"])
	assert.EqualValues(t, 1, counts["test_await_ignored_errors"])
	assert.True(t, counts["test_await_polls"] >= 6)
	assert.Equal(t, []string{"outcome:matched", "outcome:timeout", "outcome:matched"}, outcomes)

	timings := mem.TimingRecords()
	require.Len(t, timings, 3)
	for _, r := range timings {
		assert.Equal(t, "test_await_wait_duration", r.Name)
	}
}

func TestMetrics_InvalidClient(t *testing.T) {
	_, err := NewMetrics(nil)
	assert.Error(t, err)
}

func TestPrometheus(t *testing.T) {
	const alias = "prometheus_listener_test"

	err := testFactory().Alias(alias).Listener(Prometheus{}).UntilTrue(context.Background(), trueAfter(3))
	require.NoError(t, err)

	err = testFactory().Alias(alias).Listener(Prometheus{}).IgnoreAllErrors().
		Until(context.Background(), await.ConditionFunc(trueAfterError()))
	require.NoError(t, err)

	assert.EqualValues(t, 5, testutil.ToFloat64(pollCounter.WithLabelValues(alias)))
	assert.EqualValues(t, 1, testutil.ToFloat64(ignoredCounter.WithLabelValues(alias)))
	assert.EqualValues(t, 0, testutil.ToFloat64(inFlightGauge.WithLabelValues(alias)))
}

func trueAfterError() func() (bool, error) {
	var calls int
	return func() (bool, error) {
		calls++
		if calls == 1 {
			return false, io.EOF
		}
		return true, nil
	}
}
