package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-await/metrics"
)

func newTestClient(t *testing.T, config *metrics.ClientConfig) *Client {
	client, err := metrics.CreateClient(ClientType, config)
	require.NoError(t, err)
	return client.(*Client)
}

func TestRecords(t *testing.T) {
	c := newTestClient(t, &metrics.ClientConfig{
		Namespace:  "test",
		GlobalTags: []string{"env:test"},
	})

	require.NoError(t, c.Count("polls", 2, []string{"alias:a"}))
	require.NoError(t, c.Count("polls", -1, nil))
	require.NoError(t, c.Gauge("in_flight", 1.5, []string{"alias:b"}))
	require.NoError(t, c.Timing("wait_duration", time.Second, nil))

	assert.Equal(t, []CountRecord{
		{Name: "test_polls", Value: 2, Tags: []string{"alias:a", "env:test"}},
		{Name: "test_polls", Value: -1, Tags: []string{"env:test"}},
	}, c.CountRecords())
	assert.Equal(t, []GaugeRecord{
		{Name: "test_in_flight", Value: 1.5, Tags: []string{"alias:b", "env:test"}},
	}, c.GaugeRecords())
	assert.Equal(t, []TimingRecord{
		{Name: "test_wait_duration", Value: time.Second, Tags: []string{"env:test"}},
	}, c.TimingRecords())

	assert.EqualValues(t, 1, c.CountTotal("test_polls"))
	assert.EqualValues(t, 0, c.CountTotal("polls"))
}

func TestRecords_CallerTagsUntouched(t *testing.T) {
	c := newTestClient(t, &metrics.ClientConfig{GlobalTags: []string{"global"}})

	tags := make([]string, 1, 4)
	tags[0] = "local"
	require.NoError(t, c.Count("a", 1, tags))
	require.NoError(t, c.Count("b", 1, tags))

	assert.Equal(t, []string{"local"}, tags)
	assert.Equal(t, []string{"local", "global"}, c.CountRecords()[0].Tags)
	assert.Equal(t, []string{"local", "global"}, c.CountRecords()[1].Tags)
}

func TestReset(t *testing.T) {
	c := newTestClient(t, nil)

	require.NoError(t, c.Count("polls", 1, nil))
	require.NoError(t, c.Timing("wait", time.Second, nil))

	require.Len(t, c.CountRecords(), 1)
	assert.Equal(t, "polls", c.CountRecords()[0].Name)

	c.Reset()
	assert.Empty(t, c.CountRecords())
	assert.Empty(t, c.TimingRecords())
	assert.NoError(t, c.Close())
}
