package netutil

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAvailablePortForAddress(t *testing.T) {
	port, err := GetAvailablePortForAddress("localhost")
	assert.NoError(t, err)

	// We expect the port to be non-privileged, which generally means
	// 1024 and above.
	assert.True(t, port >= 1024)

	// The port must be usable right away.
	l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	require.NoError(t, err)
	assert.NoError(t, l.Close())
}

func TestGetAvailablePortForAddress_Invalid(t *testing.T) {
	_, err := GetAvailablePortForAddress("256.0.0.1")
	assert.Error(t, err)
}
