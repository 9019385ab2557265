package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/pkg/db/dbtest"
	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/events/eventstest"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/transport"
)

type fakeIndex struct {
	mu       sync.Mutex
	upserted []string
	removed  []string
	hits     []string
	err      error
}

func (f *fakeIndex) Upsert(ctx context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, p.ID.String())
	return nil
}

func (f *fakeIndex) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, from, size int) (int64, []string, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.hits)), f.hits, nil
}

type testEnv struct {
	svc      *CatalogService
	index    *fakeIndex
	events   *eventstest.Recorder
	category *models.Category
}

var fixedNow = time.UnixMilli(1700000000123)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t, &models.Category{}, &models.Product{})

	env := &testEnv{
		index:  &fakeIndex{},
		events: &eventstest.Recorder{},
	}
	env.svc = &CatalogService{
		Repo:   &repo.GormRepo{DB: db},
		Index:  env.index,
		Events: env.events,
		Now:    func() time.Time { return fixedNow },
	}

	cat, err := env.svc.CreateCategory(context.Background(), "Sneakers")
	require.NoError(t, err)
	env.category = cat
	return env
}

func (env *testEnv) validRequest(name string) transport.ProductRequest {
	return transport.ProductRequest{
		Name:           name,
		Description:    "Retro high top",
		CategoryID:     env.category.ID.String(),
		Price:          18000,
		Stock:          5,
		SizesAvailable: map[string]int{"42": 3, "43": 2},
		Images:         []string{"https://cdn.example.com/aj1.jpg"},
		Brand:          "Nike",
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.svc.CreateProduct(context.Background(), transport.ProductRequest{
		Price:          0,
		Stock:          -1,
		SizesAvailable: map[string]int{"42": -2},
	})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{"name", "description", "category_id", "price", "stock", "sizes_available"} {
		assert.Contains(t, verr.Details, field)
	}
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := env.validRequest("Samba OG")
	req.CategoryID = uuid.NewString()

	_, err := env.svc.CreateProduct(context.Background(), req)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "category does not exist", verr.Details["category_id"])
}

func TestCreateProduct_SlugSKUAndSideEffects(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateProduct(ctx, env.validRequest("Air Jordan 1 — Chicago"))
	require.NoError(t, err)
	assert.Equal(t, "air-jordan-1-chicago", first.Slug)
	require.NotNil(t, first.SKU)
	assert.True(t, strings.HasPrefix(*first.SKU, "NIK-AIRJORDA-"), *first.SKU)
	assert.True(t, first.IsActive)
	assert.Equal(t, 1, first.Version)

	second, err := env.svc.CreateProduct(ctx, env.validRequest("Air Jordan 1 — Chicago"))
	require.NoError(t, err)
	assert.Equal(t, "air-jordan-1-chicago-1700000000123", second.Slug)

	assert.Equal(t, []string{first.ID.String(), second.ID.String()}, env.index.upserted)

	published := env.events.Events()
	require.Len(t, published, 2)
	assert.Equal(t, events.TopicProducts, published[0].Topic)
	ev, ok := published[0].Event.(events.ProductEvent)
	require.True(t, ok)
	assert.Equal(t, events.ProductCreated, ev.Type)
	assert.Equal(t, "air-jordan-1-chicago", ev.Slug)
	assert.True(t, ev.IsActive)
}

func TestCreateProduct_ExplicitSKUCollision(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	req := env.validRequest("Samba OG")
	req.SKU = "ADI-SAMBA-001"
	_, err := env.svc.CreateProduct(ctx, req)
	require.NoError(t, err)

	req.Name = "Samba OG White"
	_, err = env.svc.CreateProduct(ctx, req)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Details, "sku")
}

func TestCreateProduct_InactiveIsPersisted(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	inactive := false
	req := env.validRequest("Vault Sample")
	req.IsActive = &inactive

	created, err := env.svc.CreateProduct(ctx, req)
	require.NoError(t, err)

	stored, err := env.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 3, stored.SizesAvailable["42"])
	require.NotNil(t, stored.Category)
	assert.Equal(t, "sneakers", stored.Category.Slug)
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.CreateProduct(ctx, env.validRequest("Gel Lyte III"))
	require.NoError(t, err)
	b, err := env.svc.CreateProduct(ctx, env.validRequest("Gel Kayano 14"))
	require.NoError(t, err)

	t.Run("requires name slug and price", func(t *testing.T) {
		_, err := env.svc.UpdateProduct(ctx, a.ID, transport.ProductRequest{})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Details, "name")
		assert.Contains(t, verr.Details, "slug")
		assert.Contains(t, verr.Details, "price")
	})

	t.Run("slug owned by another product", func(t *testing.T) {
		req := env.validRequest("Gel Lyte III")
		req.Slug = b.Slug
		_, err := env.svc.UpdateProduct(ctx, a.ID, req)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("missing product", func(t *testing.T) {
		req := env.validRequest("Ghost")
		req.Slug = "ghost"
		_, err := env.svc.UpdateProduct(ctx, uuid.New(), req)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("full update bumps version", func(t *testing.T) {
		req := env.validRequest("Gel Lyte III OG")
		req.Slug = "gel-lyte-iii-og"
		req.Price = 15000
		req.Stock = 9

		updated, err := env.svc.UpdateProduct(ctx, a.ID, req)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)

		stored, err := env.svc.GetProduct(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "gel-lyte-iii-og", stored.Slug)
		assert.Equal(t, int64(15000), stored.Price)
		assert.Equal(t, 9, stored.Stock)
		assert.Equal(t, 2, stored.Version)
	})
}

func TestUpdateProduct_ConcurrentStockChangeConflicts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.svc.CreateProduct(ctx, env.validRequest("Gel Lyte III"))
	require.NoError(t, err)

	// Decrement stock inside the admin update's transaction, after the
	// product was read and before the row is written.
	fired := false
	require.NoError(t, env.svc.Repo.DB.Callback().Update().Before("gorm:update").Register("test:decrement_stock", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "products" {
			return
		}
		fired = true
		tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE products SET stock = stock - 1, version = version + 1 WHERE id = ?", p.ID)
	}))

	req := env.validRequest("Gel Lyte III OG")
	req.Slug = "gel-lyte-iii-og"
	_, err = env.svc.UpdateProduct(ctx, p.ID, req)
	require.ErrorIs(t, err, ErrConflict)
	require.True(t, fired)

	stored, err := env.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Stock)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, p.Slug, stored.Slug)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	require.ErrorIs(t, env.svc.DeleteProduct(ctx, uuid.New()), ErrNotFound)

	p, err := env.svc.CreateProduct(ctx, env.validRequest("Old Skool"))
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteProduct(ctx, p.ID))

	_, err = env.svc.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{p.ID.String()}, env.index.removed)

	published := env.events.Events()
	last, ok := published[len(published)-1].Event.(events.ProductEvent)
	require.True(t, ok)
	assert.Equal(t, events.ProductDeleted, last.Type)
}

func TestAdminList(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Dunk Low Panda", "Dunk High", "Forum 84"} {
		_, err := env.svc.CreateProduct(ctx, env.validRequest(name))
		require.NoError(t, err)
	}

	items, err := env.svc.AdminList(ctx, "", "DUNK", 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = env.svc.AdminList(ctx, env.category.ID.String(), "", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = env.svc.AdminList(ctx, "not-a-uuid", "", 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestListProducts_PublicFilters(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	inactive := false
	hidden := env.validRequest("Hidden")
	hidden.IsActive = &inactive
	_, err := env.svc.CreateProduct(ctx, hidden)
	require.NoError(t, err)

	featured := env.validRequest("Featured Drop")
	featured.IsFeatured = true
	_, err = env.svc.CreateProduct(ctx, featured)
	require.NoError(t, err)

	_, err = env.svc.CreateProduct(ctx, env.validRequest("Plain"))
	require.NoError(t, err)

	page, err := env.svc.ListProducts(ctx, 0, 20, "", false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = env.svc.ListProducts(ctx, 0, 20, "sneakers", true)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Featured Drop", page.Items[0].Name)

	page, err = env.svc.ListProducts(ctx, 0, 20, "no-such-category", false)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	p, err := env.svc.ProductBySlug(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, "Plain", p.Name)

	_, err = env.svc.ProductBySlug(ctx, "hidden")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.CreateProduct(ctx, env.validRequest("Air Max 90"))
	require.NoError(t, err)
	b, err := env.svc.CreateProduct(ctx, env.validRequest("Air Force 1"))
	require.NoError(t, err)

	t.Run("index order is kept", func(t *testing.T) {
		env.index.hits = []string{b.ID.String(), uuid.NewString(), a.ID.String()}
		page, err := env.svc.SearchProducts(ctx, "air", 0, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, b.ID, page.Items[0].ID)
		assert.Equal(t, a.ID, page.Items[1].ID)
	})

	t.Run("falls back to database on index error", func(t *testing.T) {
		env.index.err = errors.New("cluster down")
		defer func() { env.index.err = nil }()

		page, err := env.svc.SearchProducts(ctx, "FORCE", 0, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, b.ID, page.Items[0].ID)
	})

	t.Run("brand matches without index", func(t *testing.T) {
		noIndex := *env.svc
		noIndex.Index = nil
		page, err := noIndex.SearchProducts(ctx, "nike", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("blank query", func(t *testing.T) {
		page, err := env.svc.SearchProducts(ctx, "  ", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})
}

func TestCreateCategory_Duplicate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.svc.CreateCategory(context.Background(), "  ")
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.CreateCategory(context.Background(), "SNEAKERS")
	require.ErrorIs(t, err, ErrConflict)
}
