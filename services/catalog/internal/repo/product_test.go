package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/pkg/db"
	"github.com/Skotchmaster/kicks_premium/pkg/db/dbtest"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/models"
)

func seedProduct(t *testing.T, r *GormRepo) *models.Product {
	t.Helper()
	ctx := context.Background()

	cat := &models.Category{Name: "Sneakers", Slug: "sneakers"}
	require.NoError(t, r.DB.WithContext(ctx).Create(cat).Error)

	prod := &models.Product{
		Name:           "Air Jordan 1",
		Slug:           "air-jordan-1",
		Price:          18000,
		Stock:          5,
		SizesAvailable: db.SizeStock{"42": 5},
		CategoryID:     cat.ID,
		IsActive:       true,
		Version:        1,
	}
	require.NoError(t, r.CreateProduct(ctx, prod))
	return prod
}

func TestUpdateProduct_RejectsStaleVersion(t *testing.T) {
	t.Parallel()
	r := &GormRepo{DB: dbtest.Open(t, &models.Category{}, &models.Product{})}
	ctx := context.Background()
	seeded := seedProduct(t, r)

	stale, err := r.GetProduct(ctx, seeded.ID)
	require.NoError(t, err)

	// a stock decrement lands between the admin's read and write
	require.NoError(t, r.DB.Model(&models.Product{}).Where("id = ?", seeded.ID).
		Updates(map[string]any{"stock": 3, "version": gorm.Expr("version + 1")}).Error)

	stale.Name = "Air Jordan 1 Chicago"
	err = r.UpdateProduct(ctx, stale)
	require.ErrorIs(t, err, ErrStaleVersion)
	assert.Equal(t, 1, stale.Version)

	current, err := r.GetProduct(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Stock)
	assert.Equal(t, "Air Jordan 1", current.Name)
	assert.Equal(t, 2, current.Version)

	current.Name = "Air Jordan 1 Chicago"
	require.NoError(t, r.UpdateProduct(ctx, current))

	saved, err := r.GetProduct(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Air Jordan 1 Chicago", saved.Name)
	assert.Equal(t, 3, saved.Stock)
	assert.Equal(t, 3, saved.Version)
}

func TestUpdateProduct_Missing(t *testing.T) {
	t.Parallel()
	r := &GormRepo{DB: dbtest.Open(t, &models.Category{}, &models.Product{})}

	err := r.UpdateProduct(context.Background(), &models.Product{ID: uuid.New(), Name: "Ghost", Slug: "ghost", Version: 1})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
