package probe

import (
	"context"

	"github.com/go-redis/redis/v7"

	"github.com/kinecosystem/agora-await/await"
)

// Redis is satisfied once a PING through client succeeds.
func Redis(ctx context.Context, client *redis.Client, options ...Option) await.Condition {
	return Func(ctx, "redis "+client.Options().Addr, func(ctx context.Context) error {
		return client.WithContext(ctx).Ping().Err()
	}, options...)
}

// RedisAddr is satisfied once a PING to the server at addr succeeds. Every
// attempt uses a fresh connection.
func RedisAddr(ctx context.Context, addr string, options ...Option) await.Condition {
	o := newOpts(options)
	return &probe{
		ctx:         ctx,
		description: "redis " + addr,
		o:           o,
		check: func(ctx context.Context) error {
			client := redis.NewClient(&redis.Options{
				Addr:        addr,
				DialTimeout: o.attemptTimeout,
			})
			defer client.Close()

			return client.WithContext(ctx).Ping().Err()
		},
	}
}
