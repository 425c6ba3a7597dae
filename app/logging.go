package app

import (
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type prometheusLogger struct {
	warnCounter  prometheus.Counter
	errorCounter prometheus.Counter
}

func newPrometheusLogger() *prometheusLogger {
	l := &prometheusLogger{}
	l.warnCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "logging_warns",
		Namespace: "await",
	})
	if err := prometheus.Register(l.warnCounter); err != nil {
		if e, ok := err.(prometheus.AlreadyRegisteredError); ok {
			l.warnCounter = e.ExistingCollector.(prometheus.Counter)
		}
	}

	l.errorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "logging_errors",
		Namespace: "await",
	})
	if err := prometheus.Register(l.errorCounter); err != nil {
		if e, ok := err.(prometheus.AlreadyRegisteredError); ok {
			l.errorCounter = e.ExistingCollector.(prometheus.Counter)
		}
	}

	return l
}

func (p *prometheusLogger) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.WarnLevel,
		logrus.ErrorLevel,
	}
}

func (p *prometheusLogger) Fire(e *logrus.Entry) error {
	switch e.Level {
	case logrus.WarnLevel:
		p.warnCounter.Inc()
	case logrus.ErrorLevel:
		p.errorCounter.Inc()
	}

	return nil
}

// ConfigureLogger sets up the formatter, level and output of logger.
// Warnings and errors are counted in the await_logging_warns and
// await_logging_errors Prometheus counters. Calling it again on the same
// logger reconfigures it without adding a second counting hook.
func ConfigureLogger(logger *logrus.Logger, out io.Writer, config BaseConfig) {
	switch strings.ToLower(config.LogType) {
	case "", "human":
		logger.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{})
		logger.WithField("log_type", config.LogType).Warn("unknown logger type, ignoring")
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logger.WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logger.SetLevel(level)
	}

	logger.SetOutput(out)
	if !hasPrometheusLogger(logger) {
		logger.AddHook(newPrometheusLogger())
	}
}

func hasPrometheusLogger(logger *logrus.Logger) bool {
	for _, h := range logger.Hooks[logrus.WarnLevel] {
		if _, ok := h.(*prometheusLogger); ok {
			return true
		}
	}
	return false
}
