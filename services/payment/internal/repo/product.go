package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
)

const MaxStockRetries = 5

var ErrStockConflict = errors.New("stock update lost to concurrent writers")

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// DecrementStock takes qty units off the product total and, when the size
// is listed, off that size. Counts floor at zero. The write only applies if
// the row version is unchanged since it was read; otherwise it re-reads and
// retries up to MaxStockRetries times.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, size string, qty int) error {
	db := r.DB.WithContext(ctx)

	for attempt := 0; attempt < MaxStockRetries; attempt++ {
		var p models.Product
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			return err
		}

		sizes := p.SizesAvailable.Clone()
		if v, ok := sizes[size]; ok && size != "" {
			sizes[size] = max(0, v-qty)
		}

		res := db.Model(&models.Product{}).
			Where("id = ? AND version = ?", p.ID, p.Version).
			Updates(map[string]any{
				"stock":           max(0, p.Stock-qty),
				"sizes_available": sizes,
				"version":         gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	return ErrStockConflict
}
