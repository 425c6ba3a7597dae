package probe

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws/awserr"
	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-await/await"
)

// AWS is satisfied once send succeeds. send typically issues a cheap read
// request against the service:
//
//	probe.AWS(ctx, "dynamodb", func(ctx context.Context) error {
//		_, err := db.ListTablesRequest(&dynamodb.ListTablesInput{}).Send(ctx)
//		return err
//	})
func AWS(ctx context.Context, service string, send func(ctx context.Context) error, options ...Option) await.Condition {
	return Func(ctx, "aws "+service, send, options...)
}

// IgnoreAWSErrorCodes returns an ignore rule for AWS errors with one of
// codes.
func IgnoreAWSErrorCodes(codes ...string) await.IgnoreRule {
	return func(err error) bool {
		var aErr awserr.Error
		if !errors.As(err, &aErr) {
			return false
		}
		for _, c := range codes {
			if aErr.Code() == c {
				return true
			}
		}
		return false
	}
}
