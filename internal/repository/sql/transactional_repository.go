package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

// TransactionalRepository writes product mutations and their outbox events in a single transaction.
type TransactionalRepository struct {
	db *sql.DB
}

// NewTransactionalRepository creates a new TransactionalRepository
func NewTransactionalRepository(db *sql.DB) *TransactionalRepository {
	return &TransactionalRepository{db: db}
}

var _ repository.ProductOutbox = (*TransactionalRepository)(nil)

// withinTransaction runs fn with product and event repositories bound to one transaction.
// The transaction is committed if fn succeeds and rolled back otherwise.
func (tr *TransactionalRepository) withinTransaction(ctx context.Context, fn func(products *ProductRepository, events *EventRepository) error) error {
	tx, err := tr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	productRepo := &ProductRepository{db: tr.db, txn: tx}
	eventRepo := &EventRepository{db: tr.db, txn: tx}

	if err := fn(productRepo, eventRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CreateProductWithEvent creates a product and its event in a single transaction.
// newEvent is called with the stored product so the event can carry its ID.
func (tr *TransactionalRepository) CreateProductWithEvent(ctx context.Context, product *model.Product, newEvent repository.EventFactory) (*model.Product, error) {
	var created *model.Product
	err := tr.withinTransaction(ctx, func(products *ProductRepository, events *EventRepository) error {
		createdRes, err := products.Create(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		var ok bool
		created, ok = createdRes.(*model.Product)
		if !ok {
			return repository.ErrInvalidType
		}

		return createEvent(ctx, events, created, newEvent)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateProductWithEvent applies patch to the locked product row and records the event.
func (tr *TransactionalRepository) UpdateProductWithEvent(ctx context.Context, id uuid.UUID, patch model.ProductPatch, newEvent repository.EventFactory) (*model.Product, error) {
	var updated *model.Product
	err := tr.withinTransaction(ctx, func(products *ProductRepository, events *EventRepository) error {
		product, err := products.findByID(ctx, id, true)
		if err != nil {
			return err
		}

		patch.Apply(product)
		if _, err := products.Update(ctx, product); err != nil {
			return err
		}
		updated = product

		return createEvent(ctx, events, updated, newEvent)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProductWithEvent deletes a product and records the deletion event in a single transaction.
// The deleted product is returned.
func (tr *TransactionalRepository) DeleteProductWithEvent(ctx context.Context, id uuid.UUID, newEvent repository.EventFactory) (*model.Product, error) {
	var deleted *model.Product
	err := tr.withinTransaction(ctx, func(products *ProductRepository, events *EventRepository) error {
		product, err := products.findByID(ctx, id, true)
		if err != nil {
			return err
		}

		if err := products.DeleteByID(ctx, product); err != nil {
			return err
		}
		deleted = product

		return createEvent(ctx, events, deleted, newEvent)
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func createEvent(ctx context.Context, events *EventRepository, product *model.Product, newEvent repository.EventFactory) error {
	event, err := newEvent(product)
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}

	if _, err := events.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}
