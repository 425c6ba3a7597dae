package probe

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kinecosystem/agora-await/await"
)

var errKeyNotFound = errors.New("key not found")

// Etcd is satisfied once a linearizable read through client succeeds.
func Etcd(ctx context.Context, client *clientv3.Client, options ...Option) await.Condition {
	return Func(ctx, "etcd "+strings.Join(client.Endpoints(), ","), func(ctx context.Context) error {
		_, err := client.Get(ctx, "/")
		return err
	}, options...)
}

// EtcdKey is satisfied once key exists.
func EtcdKey(ctx context.Context, client *clientv3.Client, key string, options ...Option) await.Condition {
	return Func(ctx, "etcd key "+key, func(ctx context.Context) error {
		resp, err := client.Get(ctx, key, clientv3.WithCountOnly())
		if err != nil {
			return err
		}
		if resp.Count == 0 {
			return errKeyNotFound
		}
		return nil
	}, options...)
}
