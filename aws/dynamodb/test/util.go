package test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/dynamodbiface"
	"github.com/ory/dockertest"

	"github.com/kinecosystem/agora-await/aws/awstest"
)

var container = awstest.Container{
	Service:    "dynamodb",
	Repository: "amazon/dynamodb-local",
	Tag:        "1.11.477",
	Port:       "8000/tcp",
}

// StartDynamoDB starts a dynamodb-local container and returns a client for it.
func StartDynamoDB(pool *dockertest.Pool) (db dynamodbiface.ClientAPI, closeFunc func(), err error) {
	var client *dynamodb.Client
	_, closeFunc, err = awstest.Start(pool, container, func(cfg aws.Config) func(ctx context.Context) error {
		client = dynamodb.New(cfg)
		return func(ctx context.Context) error {
			_, err := client.ListTablesRequest(&dynamodb.ListTablesInput{}).Send(ctx)
			return err
		}
	})
	if err != nil {
		return nil, closeFunc, err
	}
	return client, closeFunc, nil
}
