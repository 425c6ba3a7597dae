package listener

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/metrics"
)

var (
	pollCounter = metrics.RegisterAs(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "await",
		Name:      "polls_total",
		Help:      "Number of condition evaluations",
	}, []string{"alias"}))

	ignoredCounter = metrics.RegisterAs(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "await",
		Name:      "ignored_errors_total",
		Help:      "Number of condition errors suppressed by the ignore policy",
	}, []string{"alias"}))

	waitDuration = metrics.RegisterAs(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "await",
		Name:      "wait_duration_seconds",
		Help:      "Duration of completed waits",
		Buckets:   metrics.MinuteDistributionBuckets,
	}, []string{"alias", "outcome"}))

	inFlightGauge = metrics.RegisterAs(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "await",
		Name:      "in_flight",
		Help:      "Number of running waits",
	}, []string{"alias"}))
)

// Prometheus exports wait activity as prometheus metrics, labelled by alias.
// The collectors are registered with the default registry.
type Prometheus struct{}

var (
	_ await.Listener             = Prometheus{}
	_ await.StartListener        = Prometheus{}
	_ await.IgnoredErrorListener = Prometheus{}
	_ await.CompletionListener   = Prometheus{}
)

func aliasLabel(alias string) string {
	if alias == "" {
		return "unnamed"
	}
	return alias
}

// ConditionEvaluated implements await.Listener.ConditionEvaluated.
func (Prometheus) ConditionEvaluated(r await.EvaluationRecord) {
	pollCounter.WithLabelValues(aliasLabel(r.Alias)).Inc()
}

// BeforeEvaluation implements await.StartListener.BeforeEvaluation.
func (Prometheus) BeforeEvaluation(e await.StartEvent) {
	inFlightGauge.WithLabelValues(aliasLabel(e.Alias)).Inc()
}

// ErrorIgnored implements await.IgnoredErrorListener.ErrorIgnored.
func (Prometheus) ErrorIgnored(e await.IgnoredEvent) {
	ignoredCounter.WithLabelValues(aliasLabel(e.Alias)).Inc()
}

// WaitCompleted implements await.CompletionListener.WaitCompleted.
func (Prometheus) WaitCompleted(e await.CompletionEvent) {
	alias := aliasLabel(e.Alias)
	inFlightGauge.WithLabelValues(alias).Dec()
	waitDuration.WithLabelValues(alias, Outcome(e.Err)).Observe(e.Elapsed.Seconds())
}
