package test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/sqsiface"
	"github.com/ory/dockertest"

	"github.com/kinecosystem/agora-await/aws/awstest"
)

var container = awstest.Container{
	Service:    "sqs",
	Repository: "vsouza/sqs-local",
	Tag:        "latest",
	Port:       "9324/tcp",
}

// StartLocalSQS starts a local dockerized SQS server for testing.
func StartLocalSQS(pool *dockertest.Pool) (sqsiface.ClientAPI, func(), error) {
	var client *sqs.Client
	_, closeFunc, err := awstest.Start(pool, container, func(cfg aws.Config) func(ctx context.Context) error {
		client = sqs.New(cfg)
		return func(ctx context.Context) error {
			_, err := client.ListQueuesRequest(&sqs.ListQueuesInput{}).Send(ctx)
			return err
		}
	})
	if err != nil {
		return nil, closeFunc, err
	}
	return client, closeFunc, nil
}
