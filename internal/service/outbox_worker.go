package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/sqs"
)

const outboxBatchSize = 100

// OutboxWorker polls the events table and publishes pending events.
type OutboxWorker struct {
	eventRepo    repository.Repository
	eventUpdater repository.EventStatusUpdater
	publisher    Publisher
	interval     time.Duration
	stopChan     chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
}

// NewOutboxWorker creates a new OutboxWorker
func NewOutboxWorker(eventRepo repository.Repository, eventUpdater repository.EventStatusUpdater, publisher Publisher, interval time.Duration) *OutboxWorker {
	return &OutboxWorker{
		eventRepo:    eventRepo,
		eventUpdater: eventUpdater,
		publisher:    publisher,
		interval:     interval,
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start processes pending events every interval until ctx is done or Stop is called.
// Done is closed once Start returns.
func (w *OutboxWorker) Start(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker stopped by context")
			return
		case <-w.stopChan:
			slog.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessEvents(ctx)
		}
	}
}

// Stop stops the outbox worker. It is safe to call more than once.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// Done returns a channel that is closed after Start has returned, including
// any batch that was in flight when the worker was stopped.
func (w *OutboxWorker) Done() <-chan struct{} {
	return w.done
}

// ProcessEvents publishes one batch of pending events and records the outcome of each.
// It returns the number of events published.
func (w *OutboxWorker) ProcessEvents(ctx context.Context) int {
	query := repository.NewQuery().With(repository.StatusField, string(model.EventStatusPending))
	query.Limit = outboxBatchSize

	resources, err := w.eventRepo.List(ctx, *query)
	if err != nil {
		slog.Error("Failed to retrieve pending events", slog.Any("err", err))
		return 0
	}

	if len(resources) == 0 {
		return 0
	}

	slog.Info("Processing pending events", slog.Int("count", len(resources)))

	published := 0
	for _, resource := range resources {
		event, ok := resource.(*model.Event)
		if !ok {
			slog.Error("Invalid event type in outbox")
			continue
		}

		status := model.EventStatusProcessed
		if err := w.processEvent(ctx, event); err != nil {
			slog.Error("Failed to process event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))
			status = model.EventStatusFailed
		} else {
			published++
		}
		metrics.OutboxEventsPublished.WithLabelValues(string(status)).Inc()

		if err := w.eventUpdater.UpdateStatus(ctx, event.ID, status); err != nil {
			slog.Error("Failed to update event status",
				slog.String("event_id", event.ID.String()),
				slog.String("status", string(status)),
				slog.Any("err", err))
			continue
		}
		slog.Debug("Event handled",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.String("status", string(status)))
	}
	return published
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *model.Event) error {
	productMsg, err := sqs.DecodeProductMessage(event.EventData)
	if err != nil {
		return fmt.Errorf("failed to decode event data: %w", err)
	}

	return w.publisher.PublishProductMessage(ctx, productMsg)
}
