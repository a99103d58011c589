package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
	"github.com/storefront/catalog-api/internal/metrics"
)

const pagePattern = "products_page:*"

// ProductService implements catalog CRUD with a read-through cache in front
// of the persistent store. Misses for the same key are collapsed through a
// singleflight group so a cold key triggers one store fetch, not one per
// concurrent request.
type ProductService struct {
	repo     ports.ProductRepository
	cache    ports.CatalogCache
	ttl      time.Duration
	pageSize int
	group    singleflight.Group
	logger   zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, cache ports.CatalogCache, ttl time.Duration, pageSize int, logger zerolog.Logger) *ProductService {
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ProductService{repo: repo, cache: cache, ttl: ttl, pageSize: pageSize, logger: logger}
}

func productKey(id string) string {
	return "product:" + id
}

func pageKey(page int) string {
	return fmt.Sprintf("products_page:%d", page)
}

// Create persists a new product and drops every cached page, since page
// membership shifts when the catalog grows.
func (s *ProductService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	if err := s.invalidatePages(ctx); err != nil {
		return nil, err
	}

	metrics.ProductsCreatedTotal.Inc()
	s.logger.Info().Str("product_id", created.ID).Msg("product created")
	return created, nil
}

// Get returns the product from cache when present and fresh, otherwise
// fetches it from the store and populates the cache before returning.
// A missing product is never cached.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	key := productKey(id)

	var cached domain.Product
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		// Degrade to the store: a broken cache must not take reads down.
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues("product").Inc()
		return &cached, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("product").Inc()

	val, err, _ := s.group.Do(key, func() (any, error) {
		product, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, product, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache populate failed")
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*domain.Product), nil
}

// GetPage returns one page of the catalog, read through the cache under the
// page-number key.
func (s *ProductService) GetPage(ctx context.Context, page int) ([]*domain.Product, error) {
	if page < 1 {
		page = 1
	}
	key := pageKey(page)

	var cached []*domain.Product
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues("page").Inc()
		return cached, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("page").Inc()

	val, err, _ := s.group.Do(key, func() (any, error) {
		products, err := s.repo.List(ctx, page, s.pageSize)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, products, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache populate failed")
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]*domain.Product), nil
}

// Update applies a partial update and synchronously invalidates the cached
// product and every cached page before returning. A stale entry surviving
// the write would be a correctness bug, so invalidation failures are
// surfaced, not swallowed.
func (s *ProductService) Update(ctx context.Context, id string, input ports.UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	product.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, err
	}

	if err := s.invalidateProduct(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return updated, nil
}

// Delete removes the product and synchronously invalidates its cache entries.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.invalidateProduct(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *ProductService) invalidateProduct(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, productKey(id)); err != nil {
		return fmt.Errorf("invalidate product: %w", err)
	}
	metrics.CacheInvalidationsTotal.WithLabelValues("product").Inc()
	return s.invalidatePages(ctx)
}

func (s *ProductService) invalidatePages(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, pagePattern); err != nil {
		return fmt.Errorf("invalidate pages: %w", err)
	}
	metrics.CacheInvalidationsTotal.WithLabelValues("pages").Inc()
	return nil
}
