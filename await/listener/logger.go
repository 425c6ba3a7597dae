package listener

import (
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-await/await"
)

// Logger logs every event of a wait.
type Logger struct {
	log   *logrus.Entry
	level logrus.Level
}

var (
	_ await.Listener             = (*Logger)(nil)
	_ await.StartListener        = (*Logger)(nil)
	_ await.TimeoutListener      = (*Logger)(nil)
	_ await.IgnoredErrorListener = (*Logger)(nil)
	_ await.CompletionListener   = (*Logger)(nil)
)

// NewLogger returns a listener logging evaluations at level. A nil log uses
// the standard logger.
func NewLogger(log *logrus.Entry, level logrus.Level) *Logger {
	if log == nil {
		log = logrus.StandardLogger().WithField("type", "await/listener")
	}
	return &Logger{log: log, level: level}
}

func (l *Logger) entry(waitID, alias string) *logrus.Entry {
	e := l.log.WithField("wait_id", waitID)
	if alias != "" {
		e = e.WithField("alias", alias)
	}
	return e
}

// ConditionEvaluated implements await.Listener.ConditionEvaluated.
func (l *Logger) ConditionEvaluated(r await.EvaluationRecord) {
	e := l.entry(r.WaitID, r.Alias).WithFields(logrus.Fields{
		"poll_count": r.PollCount,
		"elapsed":    r.Elapsed,
		"matched":    r.Matched,
	})
	if !r.RunsForever() {
		e = e.WithField("remaining", r.Remaining)
	}
	if r.HasValue {
		e = e.WithField("value", r.Value)
	}
	e.Log(l.level, r.Description)
}

// BeforeEvaluation implements await.StartListener.BeforeEvaluation.
func (l *Logger) BeforeEvaluation(e await.StartEvent) {
	l.entry(e.WaitID, e.Alias).WithFields(logrus.Fields{
		"max_wait":   e.MaxWait.String(),
		"poll_delay": e.PollDelay.String(),
	}).Log(l.level, "wait started")
}

// OnTimeout implements await.TimeoutListener.OnTimeout.
func (l *Logger) OnTimeout(e await.TimeoutEvent) {
	l.entry(e.WaitID, e.Alias).WithField("elapsed", e.Elapsed).Warn(e.Message)
}

// ErrorIgnored implements await.IgnoredErrorListener.ErrorIgnored.
func (l *Logger) ErrorIgnored(e await.IgnoredEvent) {
	l.entry(e.WaitID, e.Alias).WithError(e.Err).WithField("poll_count", e.PollCount).Log(l.level, "ignored error")
}

// WaitCompleted implements await.CompletionListener.WaitCompleted.
func (l *Logger) WaitCompleted(e await.CompletionEvent) {
	entry := l.entry(e.WaitID, e.Alias).WithFields(logrus.Fields{
		"poll_count": e.PollCount,
		"elapsed":    e.Elapsed,
		"outcome":    Outcome(e.Err),
	})
	if e.Err != nil {
		entry.WithError(e.Err).Info("wait failed")
		return
	}
	entry.Log(l.level, "wait completed")
}
