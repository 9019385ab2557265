package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
)

// CreateOrder surfaces gorm.ErrDuplicatedKey when the session or event was
// already recorded.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) SessionRecorded(ctx context.Context, sessionID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("stripe_session_id = ?", sessionID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormRepo) MarkForReview(ctx context.Context, id uuid.UUID, notes string) error {
	return r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"needs_review": true, "review_notes": notes}).Error
}
