package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/pkg/cache"
	"github.com/Skotchmaster/kicks_premium/pkg/db"
	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/slug"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/transport"
)

const (
	AdminDefaultLimit = 50
	AdminMaxLimit     = 200
)

// Searcher is the product search index. The Elasticsearch implementation
// lives in the search package.
type Searcher interface {
	Upsert(ctx context.Context, p *models.Product) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []string, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  Searcher
	Cache  *cache.Cache
	Events events.Publisher
	Now    func() time.Time
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CatalogService) AdminList(ctx context.Context, categoryID, search string, limit int) ([]models.Product, error) {
	f := repo.AdminFilter{
		Search: search,
		Limit:  limit,
	}
	if f.Limit <= 0 {
		f.Limit = AdminDefaultLimit
	}
	if f.Limit > AdminMaxLimit {
		f.Limit = AdminMaxLimit
	}
	if categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: category must be a uuid", ErrValidation)
		}
		f.CategoryID = &id
	}
	return s.Repo.AdminList(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	verr := &ValidationError{}
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" {
		verr.add("name", "name is required")
	}
	if description == "" {
		verr.add("description", "description is required")
	}
	categoryID, err := s.checkCategory(ctx, req.CategoryID, true, verr)
	if err != nil {
		return nil, err
	}
	validateNumbers(req, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	now := s.now()
	base := slug.Make(name)
	if custom := strings.TrimSpace(req.Slug); custom != "" {
		base = slug.Make(custom)
	}
	finalSlug := base
	taken, err := s.Repo.SlugTaken(ctx, base, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		finalSlug = slug.WithSuffix(base, now)
	}

	sku := strings.TrimSpace(req.SKU)
	if sku != "" {
		taken, err := s.Repo.SKUTaken(ctx, sku, nil)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.add("sku", "sku already in use")
			return nil, verr
		}
	} else if sku, err = s.generateSKU(ctx, req.Brand, finalSlug, now); err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:        name,
		Slug:        finalSlug,
		Description: description,
		CategoryID:  categoryID,
		SKU:         &sku,
		IsActive:    req.IsActive == nil || *req.IsActive,
		Version:     1,
	}
	applyRequest(prod, req)

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug or sku already in use", ErrConflict)
		}
		l.Error("create_product_failed", "error", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ProductCreated, prod)
	l.Info("product_created", "product_id", prod.ID, "slug", prod.Slug)
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.ProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product")

	prod, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	name := strings.TrimSpace(req.Name)
	newSlug := strings.TrimSpace(req.Slug)
	if name == "" {
		verr.add("name", "name is required")
	}
	if newSlug == "" {
		verr.add("slug", "slug is required")
	}
	categoryID, err := s.checkCategory(ctx, req.CategoryID, false, verr)
	if err != nil {
		return nil, err
	}
	validateNumbers(req, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	newSlug = slug.Make(newSlug)
	taken, err := s.Repo.SlugTaken(ctx, newSlug, &id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: slug %q belongs to another product", ErrConflict, newSlug)
	}

	var sku *string
	if v := strings.TrimSpace(req.SKU); v != "" {
		taken, err := s.Repo.SKUTaken(ctx, v, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.add("sku", "sku already in use")
			return nil, verr
		}
		sku = &v
	}

	prod.Category = nil
	prod.Name = name
	prod.Slug = newSlug
	prod.Description = strings.TrimSpace(req.Description)
	prod.SKU = sku
	prod.IsActive = req.IsActive == nil || *req.IsActive
	if categoryID != uuid.Nil {
		prod.CategoryID = categoryID
	}
	applyRequest(prod, req)

	if err := s.Repo.UpdateProduct(ctx, prod); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug or sku already in use", ErrConflict)
		}
		if errors.Is(err, repo.ErrStaleVersion) {
			l.Warn("update_product_conflict", "product_id", id, "version", prod.Version)
			return nil, fmt.Errorf("%w: product changed while editing, reload and retry", ErrConflict)
		}
		l.Error("update_product_failed", "product_id", id, "error", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ProductUpdated, prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	prod, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.afterWrite(ctx, events.ProductDeleted, prod)
	return nil
}

// generateSKU steps the timestamp forward until the SKU is free.
func (s *CatalogService) generateSKU(ctx context.Context, brand, productSlug string, now time.Time) (string, error) {
	for i := 0; i < 5; i++ {
		candidate := slug.SKU(brand, productSlug, now.Add(time.Duration(i)*time.Millisecond))
		taken, err := s.Repo.SKUTaken(ctx, candidate, nil)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique sku", ErrConflict)
}

// checkCategory parses and resolves category_id. An empty value is only
// accepted when required is false, in which case uuid.Nil is returned.
func (s *CatalogService) checkCategory(ctx context.Context, raw string, required bool, verr *ValidationError) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			verr.add("category_id", "category_id is required")
		}
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		verr.add("category_id", "category_id must be a uuid")
		return uuid.Nil, nil
	}
	ok, err := s.Repo.CategoryExists(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		verr.add("category_id", "category does not exist")
	}
	return id, nil
}

func validateNumbers(req transport.ProductRequest, verr *ValidationError) {
	if req.Price <= 0 {
		verr.add("price", "price must be greater than 0")
	}
	if req.Stock < 0 {
		verr.add("stock", "stock cannot be negative")
	}
	if req.ComparePrice != nil && *req.ComparePrice < 0 {
		verr.add("compare_price", "compare_price cannot be negative")
	}
	if req.CostPrice != nil && *req.CostPrice < 0 {
		verr.add("cost_price", "cost_price cannot be negative")
	}
	for size, n := range req.SizesAvailable {
		if n < 0 {
			verr.add("sizes_available", fmt.Sprintf("size %s cannot be negative", size))
			break
		}
	}
}

func applyRequest(prod *models.Product, req transport.ProductRequest) {
	prod.Price = req.Price
	prod.ComparePrice = req.ComparePrice
	prod.CostPrice = req.CostPrice
	prod.Stock = req.Stock
	if req.SizesAvailable != nil {
		prod.SizesAvailable = db.SizeStock(req.SizesAvailable)
	}
	if req.Images != nil {
		prod.Images = db.StringList(req.Images)
	}
	prod.Brand = strings.TrimSpace(req.Brand)
	prod.Material = strings.TrimSpace(req.Material)
	prod.Color = strings.TrimSpace(req.Color)
	prod.IsFeatured = req.IsFeatured
	prod.IsLimitedEdition = req.IsLimitedEdition
}

// afterWrite syncs the search index, drops cached pages and publishes the
// change. Every step is best effort; the database write already succeeded.
func (s *CatalogService) afterWrite(ctx context.Context, eventType string, prod *models.Product) {
	l := logging.FromContext(ctx).With("product_id", prod.ID, "event", eventType)

	if s.Index != nil {
		var err error
		if eventType == events.ProductDeleted {
			err = s.Index.Remove(ctx, prod.ID.String())
		} else {
			err = s.Index.Upsert(ctx, prod)
		}
		if err != nil {
			l.Warn("search_index_sync_failed", "error", err)
		}
	}

	if err := s.Cache.DeletePattern(ctx, "products:*"); err != nil {
		l.Warn("cache_invalidate_failed", "error", err)
	}

	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ev := events.ProductEvent{
		Type:       eventType,
		ProductID:  prod.ID.String(),
		Name:       prod.Name,
		Slug:       prod.Slug,
		Brand:      prod.Brand,
		Price:      prod.Price,
		Image:      prod.FirstImage(),
		IsActive:   prod.IsActive,
		OccurredAt: s.now().UTC(),
	}
	if err := s.Events.PublishEvent(pubCtx, events.TopicProducts, prod.ID.String(), ev); err != nil {
		l.Warn("kafka_publish_failed", "error", err)
	}
}
