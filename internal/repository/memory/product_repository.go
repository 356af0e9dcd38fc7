// Package memory provides an in-process product store for running the
// service without PostgreSQL and for handler tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

// ProductRepository keeps products in insertion order. Stored values are copied
// on the way in and out so callers never share memory with the store.
type ProductRepository struct {
	mu       sync.RWMutex
	order    []uuid.UUID
	products map[uuid.UUID]model.Product
}

// NewProductRepository creates a store seeded with the given products.
func NewProductRepository(seed ...model.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[uuid.UUID]model.Product, len(seed))}
	for i := range seed {
		p := seed[i]
		if p.ID == uuid.Nil {
			p.InitMeta()
		}
		r.order = append(r.order, p.ID)
		r.products[p.ID] = p
	}
	return r
}

var _ repository.Repository = (*ProductRepository)(nil)

func (r *ProductRepository) Create(_ context.Context, resource repository.Resource) (repository.Resource, error) {
	product, ok := resource.(*model.Product)
	if !ok {
		return nil, fmt.Errorf("resource must be a *model.Product: %w", repository.ErrInvalidType)
	}
	if product.ID == uuid.Nil {
		product.InitMeta()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		r.order = append(r.order, product.ID)
	}
	r.products[product.ID] = *product

	stored := *product
	return &stored, nil
}

func (r *ProductRepository) List(_ context.Context, query repository.Query) ([]repository.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []repository.Resource{}
	for _, id := range r.order {
		p := r.products[id]
		if !query.MatchesProduct(p.Name, p.Category) {
			continue
		}
		result = append(result, &p)
		if query.Limit > 0 && len(result) == query.Limit {
			break
		}
	}
	return result, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id uuid.UUID) (repository.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product not found: %w", repository.ErrNotFound)
	}
	return &p, nil
}

func (r *ProductRepository) Update(_ context.Context, resource repository.Resource) (repository.Resource, error) {
	product, ok := resource.(*model.Product)
	if !ok {
		return nil, fmt.Errorf("resource must be a *model.Product: %w", repository.ErrInvalidType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		return nil, fmt.Errorf("product not found: %w", repository.ErrNotFound)
	}
	r.products[product.ID] = *product

	stored := *product
	return &stored, nil
}

func (r *ProductRepository) DeleteByID(_ context.Context, resource repository.Resource) error {
	product, ok := resource.(*model.Product)
	if !ok {
		return fmt.Errorf("resource must be a *model.Product: %w", repository.ErrInvalidType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		return fmt.Errorf("product not found: %w", repository.ErrNotFound)
	}
	delete(r.products, product.ID)
	for i, id := range r.order {
		if id == product.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
