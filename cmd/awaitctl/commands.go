package main

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/probe"
)

func probeOptions(v *viper.Viper) []probe.Option {
	return []probe.Option{
		probe.WithAttemptTimeout(v.GetDuration("attempt_timeout")),
		probe.WithLogger(log),
	}
}

func noop() {}

func newTCPCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tcp ADDRESS",
		Short: "Wait until a TCP address accepts connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWait(v, "tcp "+args[0], func(ctx context.Context, args []string) (await.Condition, func(), error) {
				return probe.TCP(ctx, args[0], probeOptions(v)...), noop, nil
			})(cmd, args)
		},
	}
}

func newHTTPCmd(v *viper.Viper) *cobra.Command {
	var (
		statuses []int
		headers  []string
	)

	cmd := &cobra.Command{
		Use:   "http URL",
		Short: "Wait until a GET of URL succeeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWait(v, "http "+args[0], func(ctx context.Context, args []string) (await.Condition, func(), error) {
				opts := probeOptions(v)
				if len(statuses) > 0 {
					opts = append(opts, probe.WithStatus(statuses...))
				}
				for _, h := range headers {
					parts := strings.SplitN(h, ":", 2)
					if len(parts) != 2 {
						return nil, noop, errors.Errorf("invalid header %q, expected 'Key: Value'", h)
					}
					opts = append(opts, probe.WithHeader(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])))
				}

				return probe.HTTP(ctx, args[0], opts...), noop, nil
			})(cmd, args)
		},
	}

	cmd.Flags().IntSliceVar(&statuses, "status", nil, "Accepted status codes (default any 2xx)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Request header, 'Key: Value'")
	return cmd
}

func newRedisCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "redis ADDRESS",
		Short: "Wait until a Redis server answers PING",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWait(v, "redis "+args[0], func(ctx context.Context, args []string) (await.Condition, func(), error) {
				return probe.RedisAddr(ctx, args[0], probeOptions(v)...), noop, nil
			})(cmd, args)
		},
	}
}

func newEtcdCmd(v *viper.Viper) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "etcd ENDPOINT...",
		Short: "Wait until an etcd cluster serves reads, or until a key exists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "etcd " + strings.Join(args, ",")
			if key != "" {
				target = "etcd key " + key
			}

			return runWait(v, target, func(ctx context.Context, args []string) (await.Condition, func(), error) {
				client, err := clientv3.New(clientv3.Config{
					Endpoints:   args,
					DialTimeout: 5 * time.Second,
					Context:     ctx,
				})
				if err != nil {
					return nil, noop, errors.Wrap(err, "failed to create etcd client")
				}
				closeFunc := func() {
					if err := client.Close(); err != nil {
						log.WithError(err).Debug("failed to close etcd client")
					}
				}

				if key != "" {
					return probe.EtcdKey(ctx, client, key, probeOptions(v)...), closeFunc, nil
				}
				return probe.Etcd(ctx, client, probeOptions(v)...), closeFunc, nil
			})(cmd, args)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Wait until this key exists")
	return cmd
}
