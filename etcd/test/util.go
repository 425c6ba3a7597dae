package test

import (
	"context"
	"fmt"
	"time"

	"github.com/ory/dockertest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/probe"
)

const (
	containerName    = "quay.io/coreos/etcd"
	containerVersion = "v3.3.12"
)

var (
	log = logrus.StandardLogger().WithField("type", "etcd/test")
)

// StartEtcd starts a dockerized etcd node for testing.
func StartEtcd(ctx context.Context, pool *dockertest.Pool) (client *clientv3.Client, closeFunc func(), err error) {
	closeFunc = func() {}

	log.Debug("Starting etcd container")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: containerName,
		Tag:        containerVersion,
		Cmd: []string{
			"etcd",
			"-listen-client-urls",
			"http://0.0.0.0:2379",
			"-advertise-client-urls",
			"http://0.0.0.0:2379",
		},
	})
	if err != nil {
		return nil, closeFunc, errors.Wrapf(err, "failed to create etcd resource")
	}

	closeFunc = func() {
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("Failed to cleanup etcd resource")
		}
	}

	client, err = clientv3.New(clientv3.Config{
		Endpoints:   []string{fmt.Sprintf("localhost:%s", resource.GetPort("2379/tcp"))},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrapf(err, "failed to create client")
	}

	purge := closeFunc
	closeFunc = func() {
		client.Close()
		purge()
	}

	err = await.New().
		Alias("etcd container").
		AtMost(await.OneMinute).
		PollInterval(await.Fibonacci()).
		PollDelay(await.Zero).
		Logger(log).
		Until(ctx, probe.Etcd(ctx, client, probe.WithAttemptTimeout(5*time.Second), probe.WithLogger(log)))
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "etcd didn't come up in time")
	}

	return client, closeFunc, nil
}
