package await

import (
	"time"

	"github.com/sirupsen/logrus"
)

// EvaluationRecord describes a single poll.
type EvaluationRecord struct {
	WaitID       string
	Alias        string
	PollCount    int
	Elapsed      time.Duration
	Remaining    time.Duration // negative when the wait has no upper bound
	PollInterval Duration
	Description  string
	Value        string
	HasValue     bool
	Matched      bool
}

// RunsForever reports whether the wait has no maximum.
func (r EvaluationRecord) RunsForever() bool {
	return r.Remaining < 0
}

// StartEvent is emitted once before the poll delay.
type StartEvent struct {
	WaitID    string
	Alias     string
	MaxWait   Duration
	PollDelay Duration
}

// TimeoutEvent is emitted when a wait times out.
type TimeoutEvent struct {
	WaitID  string
	Alias   string
	Message string
	Elapsed time.Duration
}

// IgnoredEvent is emitted for every error suppressed by the ignore policy.
type IgnoredEvent struct {
	WaitID    string
	Alias     string
	PollCount int
	Elapsed   time.Duration
	Err       error
}

// CompletionEvent is emitted once when the wait ends, whatever the outcome.
// Err is nil on success.
type CompletionEvent struct {
	WaitID    string
	Alias     string
	PollCount int
	Elapsed   time.Duration
	Err       error
}

// Listener observes a wait. It cannot influence the outcome; panics raised by
// listeners are logged and discarded.
//
// A Listener may also implement StartListener, TimeoutListener,
// IgnoredErrorListener and CompletionListener.
type Listener interface {
	ConditionEvaluated(r EvaluationRecord)
}

type StartListener interface {
	BeforeEvaluation(e StartEvent)
}

type TimeoutListener interface {
	OnTimeout(e TimeoutEvent)
}

type IgnoredErrorListener interface {
	ErrorIgnored(e IgnoredEvent)
}

type CompletionListener interface {
	WaitCompleted(e CompletionEvent)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(r EvaluationRecord)

// ConditionEvaluated implements Listener.ConditionEvaluated.
func (f ListenerFunc) ConditionEvaluated(r EvaluationRecord) { f(r) }

type multiListener []Listener

// MultiListener fans every event out to listeners, in order. Nil entries are
// skipped.
func MultiListener(listeners ...Listener) Listener {
	var m multiListener
	for _, l := range listeners {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

func (m multiListener) ConditionEvaluated(r EvaluationRecord) {
	for _, l := range m {
		l.ConditionEvaluated(r)
	}
}

func (m multiListener) BeforeEvaluation(e StartEvent) {
	for _, l := range m {
		if sl, ok := l.(StartListener); ok {
			sl.BeforeEvaluation(e)
		}
	}
}

func (m multiListener) OnTimeout(e TimeoutEvent) {
	for _, l := range m {
		if tl, ok := l.(TimeoutListener); ok {
			tl.OnTimeout(e)
		}
	}
}

func (m multiListener) ErrorIgnored(e IgnoredEvent) {
	for _, l := range m {
		if il, ok := l.(IgnoredErrorListener); ok {
			il.ErrorIgnored(e)
		}
	}
}

func (m multiListener) WaitCompleted(e CompletionEvent) {
	for _, l := range m {
		if cl, ok := l.(CompletionListener); ok {
			cl.WaitCompleted(e)
		}
	}
}

// notifier delivers events to an optional listener, isolating the wait from
// listener panics.
type notifier struct {
	log      *logrus.Entry
	listener Listener
}

func (n notifier) safely(event string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			n.log.WithField("event", event).WithError(NewPanicError(r)).Warn("condition evaluation listener panicked")
		}
	}()
	f()
}

func (n notifier) evaluated(r EvaluationRecord) {
	if n.listener == nil {
		return
	}
	n.safely("evaluated", func() { n.listener.ConditionEvaluated(r) })
}

func (n notifier) started(e StartEvent) {
	if l, ok := n.listener.(StartListener); ok {
		n.safely("start", func() { l.BeforeEvaluation(e) })
	}
}

func (n notifier) timedOut(e TimeoutEvent) {
	if l, ok := n.listener.(TimeoutListener); ok {
		n.safely("timeout", func() { l.OnTimeout(e) })
	}
}

func (n notifier) ignored(e IgnoredEvent) {
	if l, ok := n.listener.(IgnoredErrorListener); ok {
		n.safely("ignored", func() { l.ErrorIgnored(e) })
	}
}

func (n notifier) completed(e CompletionEvent) {
	if l, ok := n.listener.(CompletionListener); ok {
		n.safely("completed", func() { l.WaitCompleted(e) })
	}
}
