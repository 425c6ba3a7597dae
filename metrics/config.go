package metrics

import (
	"github.com/pkg/errors"
)

type ClientConfig struct {
	// Namespace prefixes every metric name.
	Namespace string
	// SampleRate is the fraction of submissions that are sent, in (0, 1]. Zero
	// means 1.
	SampleRate float64
	// GlobalTags are added to every metric.
	GlobalTags []string
}

// Validate reports a sample rate outside of [0, 1].
func (c *ClientConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return errors.Errorf("invalid sample rate %v: must be within [0, 1]", c.SampleRate)
	}
	return nil
}

type ClientOption func(o *ClientConfig)

// NewClientConfig applies opts to a config sampling every submission.
func NewClientConfig(opts ...ClientOption) *ClientConfig {
	c := &ClientConfig{SampleRate: 1}
	for _, o := range opts {
		o(c)
	}
	return c
}

func WithNamespace(namespace string) ClientOption {
	return func(o *ClientConfig) {
		o.Namespace = namespace
	}
}

func WithSampleRate(sampleRate float64) ClientOption {
	return func(o *ClientConfig) {
		o.SampleRate = sampleRate
	}
}

// WithGlobalTags adds tags to every submitted metric.
func WithGlobalTags(tagOptions ...TagOption) ClientOption {
	tags := GetTags(tagOptions...)
	return func(o *ClientConfig) {
		o.GlobalTags = append(o.GlobalTags, tags...)
	}
}
