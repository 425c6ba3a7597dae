package netutil

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// GetAvailablePortForAddress returns a port on address that was free at the
// time of the call.
func GetAvailablePortForAddress(address string) (int, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("%s:0", address))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to listen on %s", address)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
