package probe

import (
	"context"
	"net"

	"github.com/kinecosystem/agora-await/await"
)

// TCP is satisfied once a TCP connection to address can be established.
func TCP(ctx context.Context, address string, options ...Option) await.Condition {
	return Func(ctx, "tcp "+address, func(ctx context.Context) error {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return err
		}
		return conn.Close()
	}, options...)
}
