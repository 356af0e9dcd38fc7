package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ClientOption configures the client built by NewClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	region      string
	endpoint    string
	maxAttempts int
}

// WithRegion sets the AWS region. An empty region keeps the one resolved from the environment.
func WithRegion(region string) ClientOption {
	return func(o *clientOptions) { o.region = region }
}

// WithEndpoint sends requests to a custom endpoint, e.g. LocalStack. Empty is ignored.
func WithEndpoint(endpoint string) ClientOption {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

// WithMaxAttempts limits how many times each SQS call is attempted.
func WithMaxAttempts(attempts int) ClientOption {
	return func(o *clientOptions) { o.maxAttempts = attempts }
}

// NewClient loads the AWS configuration from the environment and builds an SQS client from it.
func NewClient(ctx context.Context, opts ...ClientOption) (*sqs.Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.region))
	}
	if o.maxAttempts > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(o.maxAttempts))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return sqs.NewFromConfig(awsCfg, func(so *sqs.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
	}), nil
}
