package statsd

import (
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-await/metrics"
)

func TestClient(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	os.Setenv(connAddrEnvVar, conn.LocalAddr().String())
	defer os.Unsetenv(connAddrEnvVar)

	client, err := metrics.CreateClient(ClientType, &metrics.ClientConfig{
		Namespace:  "await",
		GlobalTags: []string{"env:test"},
	})
	require.NoError(t, err)

	require.NoError(t, client.Count("polls", 3, []string{"alias:db"}))
	require.NoError(t, client.Gauge("in_flight", 2, nil))
	require.NoError(t, client.Timing("wait_duration", 250*time.Millisecond, nil))
	require.NoError(t, client.Close())

	var received strings.Builder
	buf := make([]byte, 4096)
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(500*time.Millisecond)))
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			break
		}
		received.Write(buf[:n])
		received.WriteString("\n")
	}

	out := received.String()
	assert.Contains(t, out, "await.polls:3|c")
	assert.Contains(t, out, "alias:db")
	assert.Contains(t, out, "env:test")
	assert.Contains(t, out, "await.in_flight:2|g")
	assert.Contains(t, out, "await.wait_duration:250")
}

func TestInvalidBuffer(t *testing.T) {
	os.Setenv(bufferEnvVar, "lots")
	defer os.Unsetenv(bufferEnvVar)

	_, err := metrics.CreateClient(ClientType, &metrics.ClientConfig{})
	assert.Error(t, err)
}
