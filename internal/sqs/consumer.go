package sqs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQS limits for a single ReceiveMessage call.
const (
	maxWaitTimeSeconds = 20
	maxBatchSize       = 10
)

const defaultRetryDelay = time.Second

// ConsumerAPI defines the SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Handler acts on one product message. When it returns an error the message
// stays on the queue and is delivered again once its visibility timeout expires.
type Handler func(ctx context.Context, msg ProductMessage) error

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithRetryDelay sets the pause after a failed receive.
func WithRetryDelay(d time.Duration) ConsumerOption {
	return func(c *Consumer) { c.retryDelay = d }
}

// WithWaitTime sets the long-poll duration of each receive, capped at 20 seconds.
func WithWaitTime(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.waitTimeSeconds = int32(min(max(d/time.Second, 0), maxWaitTimeSeconds))
	}
}

// WithBatchSize sets how many messages one receive may return, between 1 and 10.
func WithBatchSize(n int) ConsumerOption {
	return func(c *Consumer) {
		c.batchSize = int32(min(max(n, 1), maxBatchSize))
	}
}

// Consumer long-polls a queue and passes each product message to its handler.
type Consumer struct {
	client          ConsumerAPI
	queueURL        string
	handler         Handler
	retryDelay      time.Duration
	waitTimeSeconds int32
	batchSize       int32
}

// NewConsumer creates a Consumer for the queue at queueURL. handler must not be nil.
func NewConsumer(client ConsumerAPI, queueURL string, handler Handler, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		client:          client,
		queueURL:        queueURL,
		handler:         handler,
		retryDelay:      defaultRetryDelay,
		waitTimeSeconds: maxWaitTimeSeconds,
		batchSize:       maxBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start receives messages until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
				select {
				case <-ctx.Done():
				case <-time.After(c.retryDelay):
				}
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   c.batchSize,
		WaitTimeSeconds:       c.waitTimeSeconds,
		MessageAttributeNames: []string{ActionAttribute},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		c.handleMessage(ctx, message)
	}
	return nil
}

// handleMessage deletes the message unless the handler failed. Messages that
// cannot be decoded are deleted without reaching the handler.
func (c *Consumer) handleMessage(ctx context.Context, message types.Message) {
	log := slog.With(slog.String("message_id", aws.ToString(message.MessageId)))

	msg, err := decodeBody(message)
	if err != nil {
		log.Warn("Discarding invalid message", slog.Any("err", err))
	} else if err := c.handler(ctx, msg); err != nil {
		log.Error("Handler failed, leaving message for redelivery",
			slog.String("action", msg.Action),
			slog.String("product_id", msg.ProductID),
			slog.Any("err", err))
		return
	}

	if err := c.deleteMessage(ctx, message); err != nil {
		log.Error("Error deleting message", slog.Any("err", err))
	}
}

func decodeBody(message types.Message) (ProductMessage, error) {
	if message.Body == nil {
		return ProductMessage{}, fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}
	return DecodeProductMessage([]byte(*message.Body))
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
