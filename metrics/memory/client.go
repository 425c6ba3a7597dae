// Package memory provides a metrics.Client that keeps everything it is sent,
// so tests can assert on what a listener or cache reported.
package memory

import (
	"sync"
	"time"

	"github.com/kinecosystem/agora-await/metrics"
)

const ClientType = "memory"

func init() {
	metrics.RegisterClientCtor(ClientType, newClient)
}

type CountRecord struct {
	Name  string
	Value int64
	Tags  []string
}

type GaugeRecord struct {
	Name  string
	Value float64
	Tags  []string
}

type TimingRecord struct {
	Name  string
	Value time.Duration
	Tags  []string
}

// Client records every submitted metric. Names are prefixed with
// "<namespace>_" when the client has a namespace.
type Client struct {
	mu      sync.Mutex
	config  metrics.ClientConfig
	counts  []CountRecord
	gauges  []GaugeRecord
	timings []TimingRecord
}

func newClient(config *metrics.ClientConfig) (metrics.Client, error) {
	c := &Client{}
	if config != nil {
		c.config = *config
	}
	return c, nil
}

func (c *Client) name(name string) string {
	if c.config.Namespace == "" {
		return name
	}
	return c.config.Namespace + "_" + name
}

func (c *Client) tags(tags []string) []string {
	merged := make([]string, 0, len(tags)+len(c.config.GlobalTags))
	merged = append(merged, tags...)
	return append(merged, c.config.GlobalTags...)
}

// Count implements metrics.Client.Count.
func (c *Client) Count(name string, value int64, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts = append(c.counts, CountRecord{Name: c.name(name), Value: value, Tags: c.tags(tags)})
	return nil
}

// Gauge implements metrics.Client.Gauge.
func (c *Client) Gauge(name string, value float64, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gauges = append(c.gauges, GaugeRecord{Name: c.name(name), Value: value, Tags: c.tags(tags)})
	return nil
}

// Timing implements metrics.Client.Timing.
func (c *Client) Timing(name string, value time.Duration, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timings = append(c.timings, TimingRecord{Name: c.name(name), Value: value, Tags: c.tags(tags)})
	return nil
}

func (c *Client) CountRecords() []CountRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.counts)
}

func (c *Client) GaugeRecords() []GaugeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.gauges)
}

func (c *Client) TimingRecords() []TimingRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.timings)
}

// CountTotal sums the values of every count recorded under the fully
// qualified name.
func (c *Client) CountTotal(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, r := range c.counts {
		if r.Name == name {
			total += r.Value
		}
	}
	return total
}

// Reset discards all records.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts = nil
	c.gauges = nil
	c.timings = nil
}

// Close implements metrics.Client.Close.
func (c *Client) Close() error {
	return nil
}

func snapshot[T any](records []T) []T {
	out := make([]T, len(records))
	copy(out, records)
	return out
}
