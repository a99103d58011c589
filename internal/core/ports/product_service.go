package ports

import (
	"context"

	"github.com/storefront/catalog-api/internal/core/domain"
)

// CreateProductInput carries a fully specified new product.
type CreateProductInput struct {
	Name        string
	Price       float64
	Description string
}

// UpdateProductInput carries a partial product update. Nil means "leave
// unchanged".
type UpdateProductInput struct {
	Name        *string
	Price       *float64
	Description *string
}

type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	// Get and GetPage read through the catalog cache.
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetPage(ctx context.Context, page int) ([]*domain.Product, error)
	Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
