package test

import (
	"context"
	"fmt"

	"github.com/ory/dockertest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/probe"
)

const (
	containerName    = "redis"
	containerVersion = "5"
)

var (
	log = logrus.StandardLogger().WithField("type", "redis/test")
)

// StartRedis starts a dockerized Redis server and waits until it answers
// PING. The wait is bounded by ctx and one minute, whichever is shorter.
func StartRedis(ctx context.Context, pool *dockertest.Pool) (connString string, closeFunc func(), err error) {
	resource, err := pool.Run(containerName, containerVersion, nil)
	if err != nil {
		return "", func() {}, errors.Wrap(err, "failed to start resource")
	}

	closeFunc = func() {
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("Failed to clean up Redis resource")
		}
	}

	port := resource.GetPort("6379/tcp")
	connString = fmt.Sprintf("localhost:%s", port)

	err = await.New().
		Alias("redis container").
		AtMost(await.OneMinute).
		PollEvery(await.OneSecond).
		PollDelay(await.Zero).
		Logger(log).
		Until(ctx, probe.RedisAddr(ctx, connString, probe.WithLogger(log)))
	if err != nil {
		closeFunc()
		return "", func() {}, errors.Wrap(err, "redis didn't come up in time")
	}

	return connString, closeFunc, nil
}
