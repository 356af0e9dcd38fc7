package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/sqs"
)

// Publisher sends product notifications to a queue.
type Publisher interface {
	PublishProductMessage(ctx context.Context, msg sqs.ProductMessage) error
}

// ProductService implements the catalog operations on top of a product repository.
// Notifications are either written to the outbox in the same transaction as the
// mutation or, without an outbox, published directly after it.
type ProductService struct {
	repo      repository.Repository
	outbox    repository.ProductOutbox
	publisher Publisher
}

// NewProductService creates a service that publishes notifications directly.
// publisher may be nil to disable notifications.
func NewProductService(repo repository.Repository, publisher Publisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// NewProductServiceWithOutbox creates a service that records notifications in the outbox.
func NewProductServiceWithOutbox(repo repository.Repository, outbox repository.ProductOutbox) *ProductService {
	return &ProductService{
		repo:   repo,
		outbox: outbox,
	}
}

// GetAllProducts returns every product in storage order.
func (ps *ProductService) GetAllProducts(ctx context.Context) ([]*model.Product, error) {
	return ps.ListProducts(ctx, *repository.NewQuery())
}

// ListProducts returns the products matching the query filters.
func (ps *ProductService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	resources, err := ps.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	products := make([]*model.Product, 0, len(resources))
	for _, res := range resources {
		product, ok := res.(*model.Product)
		if !ok {
			return nil, repository.ErrInvalidType
		}
		products = append(products, product)
	}
	return products, nil
}

// GetProductByID returns a single product. repository.ErrNotFound is returned for unknown ids.
func (ps *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	resource, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product, ok := resource.(*model.Product)
	if !ok {
		return nil, repository.ErrInvalidType
	}
	return product, nil
}

func (ps *ProductService) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	var created *model.Product
	if ps.outbox != nil {
		var err error
		created, err = ps.outbox.CreateProductWithEvent(ctx, product, productEvent(model.EventTypeProductCreated, sqs.ActionCreated))
		if err != nil {
			return nil, err
		}
	} else {
		res, err := ps.repo.Create(ctx, product)
		if err != nil {
			return nil, err
		}
		var ok bool
		if created, ok = res.(*model.Product); !ok {
			return nil, repository.ErrInvalidType
		}
		ps.publish(ctx, sqs.ActionCreated, created)
	}

	metrics.ProductsCreated.Inc()
	return created, nil
}

// UpdateProduct applies the non-nil fields of patch to the product with the given id.
func (ps *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	var updated *model.Product
	if ps.outbox != nil {
		var err error
		updated, err = ps.outbox.UpdateProductWithEvent(ctx, id, patch, productEvent(model.EventTypeProductUpdated, sqs.ActionUpdated))
		if err != nil {
			return nil, err
		}
	} else {
		product, err := ps.GetProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		patch.Apply(product)

		res, err := ps.repo.Update(ctx, product)
		if err != nil {
			return nil, err
		}
		var ok bool
		if updated, ok = res.(*model.Product); !ok {
			return nil, repository.ErrInvalidType
		}
		ps.publish(ctx, sqs.ActionUpdated, updated)
	}

	metrics.ProductsUpdated.Inc()
	return updated, nil
}

// DeleteProduct removes the product with the given id and returns it.
func (ps *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var deleted *model.Product
	if ps.outbox != nil {
		var err error
		deleted, err = ps.outbox.DeleteProductWithEvent(ctx, id, productEvent(model.EventTypeProductDeleted, sqs.ActionDeleted))
		if err != nil {
			return nil, err
		}
	} else {
		product, err := ps.GetProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := ps.repo.DeleteByID(ctx, product); err != nil {
			return nil, err
		}
		deleted = product
		ps.publish(ctx, sqs.ActionDeleted, deleted)
	}

	metrics.ProductsDeleted.Inc()
	return deleted, nil
}

// GetProductStats counts products per category. Categories are grouped by their exact value.
func (ps *ProductService) GetProductStats(ctx context.Context) (map[string]int, error) {
	products, err := ps.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int)
	for _, p := range products {
		stats[p.Category]++
	}
	return stats, nil
}

func (ps *ProductService) publish(ctx context.Context, action string, product *model.Product) {
	if ps.publisher == nil {
		return
	}
	if err := ps.publisher.PublishProductMessage(ctx, NewProductMessage(action, product)); err != nil {
		// the mutation is already stored, so the request still succeeds
		slog.Error("Failed to send SQS message", slog.Any("err", err), slog.String("action", action), slog.String("product_id", product.ID.String()))
	}
}

// NewProductMessage builds the queue notification for a product change.
func NewProductMessage(action string, product *model.Product) sqs.ProductMessage {
	return sqs.ProductMessage{
		Action:    action,
		ProductID: product.ID.String(),
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		InStock:   product.InStock,
	}
}

func productEvent(eventType, action string) repository.EventFactory {
	return func(product *model.Product) (*model.Event, error) {
		event, err := model.NewEvent(eventType, NewProductMessage(action, product))
		if err != nil {
			return nil, fmt.Errorf("failed to build %s event: %w", eventType, err)
		}
		return event, nil
	}
}
