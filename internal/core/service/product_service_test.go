package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Counting stub repository
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	products map[string]*domain.Product
	order    []string
	nextID   int

	findCalls int
	listCalls int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.nextID++
	clone := *p
	clone.ID = fmt.Sprintf("prod_%d", r.nextID)
	r.products[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.findCalls++
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context, page, pageSize int) ([]*domain.Product, error) {
	r.listCalls++
	start := (page - 1) * pageSize
	if start >= len(r.order) {
		return []*domain.Product{}, nil
	}
	end := start + pageSize
	if end > len(r.order) {
		end = len(r.order)
	}
	out := make([]*domain.Product, 0, end-start)
	for _, id := range r.order[start:end] {
		clone := *r.products[id]
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if _, ok := r.products[p.ID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	r.products[p.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// In-memory fake cache with a controllable clock
// ---------------------------------------------------------------------------

type fakeEntry struct {
	data      []byte
	expiresAt time.Time
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	now     time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]fakeEntry), now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && c.now.Before(e.expiresAt)
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now.Before(e.expiresAt) {
		delete(c.entries, key)
		return false, nil
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = fakeEntry{data: data, expiresAt: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func newTestProductService(repo ports.ProductRepository, cache ports.CatalogCache) *ProductService {
	return NewProductService(repo, cache, 300*time.Second, 10, zerolog.Nop())
}

func mustCreate(t *testing.T, svc *ProductService, name string, price float64) *domain.Product {
	t.Helper()
	p, err := svc.Create(context.Background(), ports.CreateProductInput{Name: name, Price: price})
	if err != nil {
		t.Fatalf("create %s failed: %v", name, err)
	}
	return p
}

// ---------------------------------------------------------------------------
// Read-through behaviour
// ---------------------------------------------------------------------------

func TestProductService_Get_ReadThrough(t *testing.T) {
	repo := newStubProductRepo()
	cache := newFakeCache()
	svc := newTestProductService(repo, cache)

	created := mustCreate(t, svc, "Widget", 9.99)

	first, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	if repo.findCalls != 1 {
		t.Fatalf("expected one store fetch, got %d", repo.findCalls)
	}
	if !cache.has("product:" + created.ID) {
		t.Fatalf("cache not populated on miss")
	}

	// Repeated reads inside the TTL never touch the store again.
	second, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if repo.findCalls != 1 {
		t.Fatalf("cached read hit the store, calls=%d", repo.findCalls)
	}
	if first.Name != second.Name || first.Price != second.Price {
		t.Fatalf("cached value differs: %+v vs %+v", first, second)
	}
}

func TestProductService_Get_TTLExpiry(t *testing.T) {
	repo := newStubProductRepo()
	cache := newFakeCache()
	svc := newTestProductService(repo, cache)

	created := mustCreate(t, svc, "Widget", 9.99)

	if _, err := svc.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	cache.advance(301 * time.Second)

	if _, err := svc.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("get after expiry failed: %v", err)
	}
	if repo.findCalls != 2 {
		t.Fatalf("expected refetch after TTL, calls=%d", repo.findCalls)
	}
}

func TestProductService_Get_NotFoundNotCached(t *testing.T) {
	repo := newStubProductRepo()
	cache := newFakeCache()
	svc := newTestProductService(repo, cache)

	for i := 0; i < 2; i++ {
		if _, err := svc.Get(context.Background(), "prod_missing"); !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	}
	if repo.findCalls != 2 {
		t.Fatalf("absence must not be cached, calls=%d", repo.findCalls)
	}
	if cache.has("product:prod_missing") {
		t.Fatalf("missing product cached")
	}
}

func TestProductService_GetPage_ReadThrough(t *testing.T) {
	repo := newStubProductRepo()
	cache := newFakeCache()
	svc := newTestProductService(repo, cache)

	mustCreate(t, svc, "Widget", 9.99)
	mustCreate(t, svc, "Gadget", 19.99)

	page, err := svc.GetPage(context.Background(), 1)
	if err != nil {
		t.Fatalf("get page failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page))
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected one list fetch, got %d", repo.listCalls)
	}

	if _, err := svc.GetPage(context.Background(), 1); err != nil {
		t.Fatalf("cached page failed: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("cached page hit the store, calls=%d", repo.listCalls)
	}

	// Page numbers below 1 are clamped to the first page.
	if _, err := svc.GetPage(context.Background(), 0); err != nil {
		t.Fatalf("page 0 failed: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("page 0 must reuse page 1's entry, calls=%d", repo.listCalls)
	}
}

// ---------------------------------------------------------------------------
// Invalidation
// ---------------------------------------------------------------------------

func TestProductService_Update_InvalidatesBeforeReturn(t *testing.T) {
	repo := newStubProductRepo()
	cache := newFakeCache()
	svc := newTestProductService(repo, cache)

	created := mustCreate(t, svc, "Widget", 9.99)
	if _, err := svc.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	price := 19.99
	if _, err := svc.Update(context.Background(), created.ID, ports.UpdateProductInput{Price: &price}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if cache.has("product:" + created.ID) {
		t.Fatalf("stale entry survived the update")
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get after update failed: %v", err)
	}
	if got.Price != 19.99 {
		t.Fatalf("stale read: price=%v", got.Price)
	}
}

func TestProductService_Create_InvalidatesPages(t *testing.T) {
	repo := newStubProductRepo()
	cache := newFakeCache()
	svc := newTestProductService(repo, cache)

	mustCreate(t, svc, "Widget", 9.99)
	if _, err := svc.GetPage(context.Background(), 1); err != nil {
		t.Fatalf("get page failed: %v", err)
	}

	mustCreate(t, svc, "Gadget", 19.99)
	if cache.has("products_page:1") {
		t.Fatalf("page cache survived a create")
	}

	page, err := svc.GetPage(context.Background(), 1)
	if err != nil {
		t.Fatalf("get page failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected the new product on the page, got %d entries", len(page))
	}
}

func TestProductService_Delete_Invalidates(t *testing.T) {
	repo := newStubProductRepo()
	cache := newFakeCache()
	svc := newTestProductService(repo, cache)

	created := mustCreate(t, svc, "Widget", 9.99)
	if _, err := svc.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, err := svc.GetPage(context.Background(), 1); err != nil {
		t.Fatalf("get page failed: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if cache.has("product:" + created.ID) {
		t.Fatalf("product entry survived the delete")
	}
	if cache.has("products_page:1") {
		t.Fatalf("page entry survived the delete")
	}

	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
}

func TestProductService_Update_NotFound(t *testing.T) {
	svc := newTestProductService(newStubProductRepo(), newFakeCache())

	price := 5.0
	if _, err := svc.Update(context.Background(), "prod_missing", ports.UpdateProductInput{Price: &price}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
