package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/slug"
)

type ProductPage struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

// ListProducts serves the storefront listing. category may be a category
// id or slug; an unknown slug yields an empty page.
func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int, category string, featured bool) (*ProductPage, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.list_products")

	key := fmt.Sprintf("products:list:%d:%d:%s:%t", offset, limit, category, featured)
	var cached ProductPage
	if hit, err := s.Cache.Get(ctx, key, &cached); err != nil {
		l.Warn("cache_get_failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	f := repo.PublicFilter{Featured: featured, Offset: offset, Limit: limit}
	if category = strings.TrimSpace(category); category != "" {
		if id, err := uuid.Parse(category); err == nil {
			f.CategoryID = &id
		} else {
			c, err := s.Repo.CategoryBySlug(ctx, category)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ProductPage{Items: []models.Product{}}, nil
			}
			if err != nil {
				return nil, err
			}
			f.CategoryID = &c.ID
		}
	}

	total, items, err := s.Repo.ListActive(ctx, f)
	if err != nil {
		return nil, err
	}
	page := &ProductPage{Total: total, Items: items}
	if err := s.Cache.Set(ctx, key, page); err != nil {
		l.Warn("cache_set_failed", "key", key, "error", err)
	}
	return page, nil
}

func (s *CatalogService) ProductBySlug(ctx context.Context, productSlug string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.product_by_slug")

	key := "products:slug:" + productSlug
	var cached models.Product
	if hit, err := s.Cache.Get(ctx, key, &cached); err != nil {
		l.Warn("cache_get_failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	p, err := s.Repo.GetActiveBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, p); err != nil {
		l.Warn("cache_set_failed", "key", key, "error", err)
	}
	return p, nil
}

// SearchProducts asks the search index first and falls back to a database
// name match when no index is configured or the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, offset, limit int) (*ProductPage, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return &ProductPage{Items: []models.Product{}}, nil
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			items, err := s.Repo.ActiveByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return &ProductPage{Total: total, Items: items}, nil
		}
		l.Warn("search_index_failed", "error", err)
	}

	total, items, err := s.Repo.SearchByName(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Total: total, Items: items}, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Details: map[string]string{"name": "name is required"}}
	}

	c := &models.Category{Name: name, Slug: slug.Make(name)}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, c.Slug)
		}
		return nil, err
	}
	return c, nil
}
