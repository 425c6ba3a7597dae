package test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/s3iface"
	"github.com/ory/dockertest"

	"github.com/kinecosystem/agora-await/aws/awstest"
)

var container = awstest.Container{
	Service:    "s3",
	Repository: "adobe/s3mock",
	Tag:        "latest",
	Port:       "9090/tcp",
}

// StartS3 starts a mock S3 dockerized server.
func StartS3(pool *dockertest.Pool) (s3iface.ClientAPI, func(), error) {
	var client *s3.Client
	_, closeFunc, err := awstest.Start(pool, container, func(cfg aws.Config) func(ctx context.Context) error {
		client = s3.New(cfg)
		// s3mock does not resolve virtual host style bucket names.
		client.ForcePathStyle = true
		return func(ctx context.Context) error {
			_, err := client.ListBucketsRequest(&s3.ListBucketsInput{}).Send(ctx)
			return err
		}
	})
	if err != nil {
		return nil, closeFunc, err
	}
	return client, closeFunc, nil
}
