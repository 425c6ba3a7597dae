// Package awstest runs dockerized AWS compatible services for tests.
package awstest

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/ory/dockertest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"mfycheng.dev/retry/backoff"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/probe"
)

// Container describes the image of a mock service.
type Container struct {
	// Service names the container in logs and errors.
	Service    string
	Repository string
	Tag        string
	// Port is the exposed container port, e.g. "8000/tcp".
	Port string
}

// ReadyFunc builds a client from cfg and returns a request that succeeds once
// the service accepts calls.
type ReadyFunc func(cfg aws.Config) func(ctx context.Context) error

// Start runs c and blocks until the request returned by ready succeeds. The
// returned config only ever talks to the container.
func Start(pool *dockertest.Pool, c Container, ready ReadyFunc) (cfg aws.Config, closeFunc func(), err error) {
	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"type":    "aws/awstest",
		"service": c.Service,
	})
	closeFunc = func() {}

	resource, err := pool.Run(c.Repository, c.Tag, nil)
	if err != nil {
		return cfg, closeFunc, errors.Wrapf(err, "failed to start %s resource", c.Service)
	}

	closeFunc = func() {
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("failed to cleanup resource")
		}
	}

	cfg, err = external.LoadDefaultAWSConfig()
	if err != nil {
		closeFunc()
		return cfg, func() {}, errors.Wrap(err, "failed to load default aws config")
	}

	cfg.Region = "test-region-1"
	cfg.Credentials = aws.NewStaticCredentialsProvider("test", "test", "test")
	cfg.EndpointResolver = aws.ResolveWithEndpointURL(fmt.Sprintf("http://%s", resource.GetHostPort(c.Port)))

	send := ready(cfg)
	err = await.New().
		Alias(c.Service+" container").
		AtMost(await.OneMinute).
		PollInterval(await.BackoffPollInterval(backoff.Constant(500*time.Millisecond))).
		PollDelay(await.Zero).
		Logger(log).
		Until(context.Background(), probe.AWS(context.Background(), c.Service, send, probe.WithLogger(log)))
	if err != nil {
		closeFunc()
		return cfg, func() {}, errors.Wrapf(err, "timed out waiting for %s container to become available", c.Service)
	}

	return cfg, closeFunc, nil
}
