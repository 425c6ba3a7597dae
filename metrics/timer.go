package metrics

import (
	"sync"
	"time"
)

// Timer tracks the duration of a metric
type Timer struct {
	client Client
	name   string
	tags   []string
}

// TimerContext is the context for an in-flight datapoint
type TimerContext struct {
	stateMu        sync.Mutex
	timer          *Timer
	start          time.Time
	stopped        bool
	additionalTags []TagOption
}

// NewTimer returns a new Timer
func NewTimer(client Client, name string, tagOptions ...TagOption) (*Timer, error) {
	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	return &Timer{
		client: client,
		name:   name,
		tags:   GetTags(tagOptions...),
	}, nil
}

// Time begins tracking a new datapoint. Use TimerContext.Stop on the
// returned context to record the time passed since calling Time
func (t *Timer) Time(tags ...TagOption) *TimerContext {
	return &TimerContext{
		start:          time.Now(),
		timer:          t,
		additionalTags: tags,
	}
}

// AddTiming emits a timing value that has already been observed
func (t *Timer) AddTiming(value time.Duration, tags ...TagOption) {
	t.submit(value, tags)
}

// Since emits the time passed since start.
func (t *Timer) Since(start time.Time, tags ...TagOption) {
	t.submit(time.Since(start), tags)
}

func (t *Timer) submit(value time.Duration, additional []TagOption) {
	tags := make([]string, 0, len(t.tags)+len(additional))
	tags = append(tags, t.tags...)
	tags = append(tags, GetTags(additional...)...)
	_ = t.client.Timing(t.name, value, tags)
}

// Stop records the time since the context's creation if it hasn't already
// been stopped
func (tc *TimerContext) Stop() {
	tc.StopWith()
}

// StopWith is like Stop, adding tags only known once the datapoint is
// complete, such as an outcome. It returns the recorded duration, or zero if
// the context was already stopped.
func (tc *TimerContext) StopWith(tags ...TagOption) time.Duration {
	tc.stateMu.Lock()
	defer tc.stateMu.Unlock()

	if tc.stopped {
		return 0
	}
	tc.stopped = true

	elapsed := time.Since(tc.start)
	tc.timer.submit(elapsed, append(tc.additionalTags[:len(tc.additionalTags):len(tc.additionalTags)], tags...))
	return elapsed
}
