package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidType is returned when a repository receives a resource of the wrong type.
	ErrInvalidType = errors.New("invalid resource type")
)

// Repository defines the interface for a generic repository that can manage resources.
type Repository interface {
	Create(ctx context.Context, resource Resource) (result Resource, err error)
	List(ctx context.Context, query Query) (result []Resource, err error)
	FindByID(ctx context.Context, id uuid.UUID) (result Resource, err error) // find one
	Update(ctx context.Context, resource Resource) (result Resource, err error)
	DeleteByID(ctx context.Context, resource Resource) error
}

// Resource represents a generic resource that can be managed by the repository.
type Resource interface {
	InitMeta()
}

// EventStatusUpdater marks outbox events as processed or failed.
type EventStatusUpdater interface {
	UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error
}

// EventFactory builds the outbox event for a product after it was written.
type EventFactory func(product *model.Product) (*model.Event, error)

// ProductOutbox writes product mutations together with their outbox events atomically.
type ProductOutbox interface {
	CreateProductWithEvent(ctx context.Context, product *model.Product, newEvent EventFactory) (*model.Product, error)
	UpdateProductWithEvent(ctx context.Context, id uuid.UUID, patch model.ProductPatch, newEvent EventFactory) (*model.Product, error)
	DeleteProductWithEvent(ctx context.Context, id uuid.UUID, newEvent EventFactory) (*model.Product, error)
}
