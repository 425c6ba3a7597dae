package probe

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultAttemptTimeout = time.Second

type opts struct {
	attemptTimeout time.Duration
	log            *logrus.Entry

	httpClient *http.Client
	statuses   map[int]struct{}
	header     http.Header
}

func newOpts(options []Option) opts {
	o := opts{
		attemptTimeout: defaultAttemptTimeout,
		log:            logrus.StandardLogger().WithField("type", "probe"),
		httpClient:     http.DefaultClient,
		header:         make(http.Header),
	}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// Option configures a probe.
type Option func(o *opts)

// WithAttemptTimeout bounds every single probe attempt. It defaults to one
// second.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *opts) {
		if d > 0 {
			o.attemptTimeout = d
		}
	}
}

// WithLogger sets the entry failed attempts are logged to, at trace level.
func WithLogger(log *logrus.Entry) Option {
	return func(o *opts) {
		if log != nil {
			o.log = log
		}
	}
}

// WithHTTPClient sets the client used by HTTP probes.
func WithHTTPClient(c *http.Client) Option {
	return func(o *opts) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithStatus adds accepted response codes for HTTP probes. If no status is
// configured, any 2xx response is accepted.
func WithStatus(codes ...int) Option {
	return func(o *opts) {
		if o.statuses == nil {
			o.statuses = make(map[int]struct{})
		}
		for _, c := range codes {
			o.statuses[c] = struct{}{}
		}
	}
}

// WithHeader adds a request header to HTTP probes.
func WithHeader(key, value string) Option {
	return func(o *opts) {
		o.header.Add(key, value)
	}
}
