package etcd

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kinecosystem/agora-await/config"
)

type conf struct {
	log *logrus.Entry

	client *clientv3.Client
	key    string

	mux        sync.RWMutex
	kv         *mvccpb.KeyValue
	cancelFunc context.CancelFunc
	shutdown   bool
}

// NewConfig returns a config that tracks key in etcd. The current value is
// fetched immediately and later puts are observed through a watch. Deleting
// the key keeps the last known value.
func NewConfig(client *clientv3.Client, key string) (config.Config, error) {
	resp, err := client.Get(context.Background(), key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch initial value of %s", key)
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	c := &conf{
		log:        logrus.StandardLogger().WithField("type", "config/etcd").WithField("key", key),
		client:     client,
		key:        key,
		cancelFunc: cancelFunc,
	}
	if len(resp.Kvs) > 0 {
		c.kv = resp.Kvs[0]
	}

	go c.watch(ctx, resp.Header.Revision+1)
	return c, nil
}

// Get implements config.Config.Get.
func (c *conf) Get(_ context.Context) (interface{}, error) {
	c.mux.RLock()
	defer c.mux.RUnlock()

	if c.shutdown {
		c.log.Warn("attempted use of config after shutdown")
		return nil, config.ErrShutdown
	}
	if c.kv == nil {
		return nil, config.ErrNoValue
	}

	return c.kv.Value, nil
}

// Shutdown implements config.Config.Shutdown.
func (c *conf) Shutdown() {
	c.mux.Lock()
	if !c.shutdown {
		c.log.Info("shutting down")
		c.cancelFunc()
		c.shutdown = true
	}
	c.mux.Unlock()
}

func (c *conf) watch(ctx context.Context, rev int64) {
	for {
		wc := c.client.Watch(clientv3.WithRequireLeader(ctx), c.key, clientv3.WithRev(rev))
		for resp := range wc {
			if err := resp.Err(); err != nil {
				c.log.WithError(err).Warn("watch failed")
				break
			}

			for _, e := range resp.Events {
				if e.Type != mvccpb.PUT {
					continue
				}
				c.mux.Lock()
				c.kv = e.Kv
				c.mux.Unlock()
			}
			rev = resp.Header.Revision + 1
		}

		select {
		case <-ctx.Done():
			return
		default:
			c.log.Debug("restarting watch")
		}
	}
}
