package main

import (
	"context"
	"log/slog"

	sqspkg "github.com/iyhunko/product-catalog/internal/sqs"
)

// logNotification writes each product notification to the service log.
func logNotification(ctx context.Context, msg sqspkg.ProductMessage) error {
	attrs := []any{
		slog.String("action", msg.Action),
		slog.String("product_id", msg.ProductID),
	}
	if msg.Action != sqspkg.ActionDeleted {
		attrs = append(attrs,
			slog.String("name", msg.Name),
			slog.String("category", msg.Category),
			slog.Float64("price", msg.Price),
			slog.Bool("in_stock", msg.InStock))
	}
	slog.InfoContext(ctx, "Received product notification", attrs...)
	return nil
}
