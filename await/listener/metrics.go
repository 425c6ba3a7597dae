package listener

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/metrics"
)

// Metrics reports wait activity through a metrics.Client:
//
//	await_polls          count of evaluations
//	await_ignored_errors count of ignored errors
//	await_waits          count of completed waits, tagged by outcome
//	await_wait_duration  timing of completed waits, tagged by outcome
//	await_in_flight      gauge of running waits
type Metrics struct {
	polls    *metrics.Meter
	ignored  *metrics.Meter
	waits    *metrics.Meter
	duration *metrics.Timer
	inFlight *metrics.Gauge
	running  int64
}

var (
	_ await.Listener             = (*Metrics)(nil)
	_ await.StartListener        = (*Metrics)(nil)
	_ await.IgnoredErrorListener = (*Metrics)(nil)
	_ await.CompletionListener   = (*Metrics)(nil)
)

// NewMetrics returns a metrics listener. Call Close to stop reporting the
// in-flight gauge.
func NewMetrics(client metrics.Client, tags ...metrics.TagOption) (*Metrics, error) {
	if client == nil {
		return nil, errors.New("metrics client cannot be nil")
	}

	m := &Metrics{}

	var err error
	if m.polls, err = metrics.NewMeter(client, "await_polls", tags...); err != nil {
		return nil, errors.Wrap(err, "failed to create polls meter")
	}
	if m.ignored, err = metrics.NewMeter(client, "await_ignored_errors", tags...); err != nil {
		return nil, errors.Wrap(err, "failed to create ignored errors meter")
	}
	if m.waits, err = metrics.NewMeter(client, "await_waits", tags...); err != nil {
		return nil, errors.Wrap(err, "failed to create waits meter")
	}
	if m.duration, err = metrics.NewTimer(client, "await_wait_duration", tags...); err != nil {
		return nil, errors.Wrap(err, "failed to create wait duration timer")
	}
	if m.inFlight, err = metrics.NewGauge(client, "await_in_flight", m.inFlightValue, tags...); err != nil {
		return nil, errors.Wrap(err, "failed to create in flight gauge")
	}

	return m, nil
}

func (m *Metrics) inFlightValue() float64 {
	return float64(atomic.LoadInt64(&m.running))
}

// InFlight returns the number of waits started but not completed.
func (m *Metrics) InFlight() int64 {
	return atomic.LoadInt64(&m.running)
}

// ConditionEvaluated implements await.Listener.ConditionEvaluated.
func (m *Metrics) ConditionEvaluated(await.EvaluationRecord) {
	m.polls.Incr()
}

// BeforeEvaluation implements await.StartListener.BeforeEvaluation.
func (m *Metrics) BeforeEvaluation(await.StartEvent) {
	atomic.AddInt64(&m.running, 1)
}

// ErrorIgnored implements await.IgnoredErrorListener.ErrorIgnored.
func (m *Metrics) ErrorIgnored(await.IgnoredEvent) {
	m.ignored.Incr()
}

// WaitCompleted implements await.CompletionListener.WaitCompleted.
func (m *Metrics) WaitCompleted(e await.CompletionEvent) {
	atomic.AddInt64(&m.running, -1)

	outcome := metrics.WithOutcomeTag(Outcome(e.Err))
	m.waits.Incr(outcome)
	m.duration.AddTiming(e.Elapsed, outcome)
}

// Close stops the in-flight gauge.
func (m *Metrics) Close() {
	m.inFlight.Stop()
}
