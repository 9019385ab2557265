package repo

import (
	"context"

	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/models"
)

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) CreateSubscriber(ctx context.Context, s *models.Subscriber) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("email = ?", email).Delete(&models.Subscriber{})
	return res.RowsAffected, res.Error
}

// ListSubscribers returns newest first. A nil verified means any.
func (r *GormRepo) ListSubscribers(ctx context.Context, verified *bool, limit int) ([]models.Subscriber, error) {
	q := r.DB.WithContext(ctx).Model(&models.Subscriber{})
	if verified != nil {
		q = q.Where("verified = ?", *verified)
	}

	var out []models.Subscriber
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) CountSubscribers(ctx context.Context) (total, verified int64, err error) {
	db := r.DB.WithContext(ctx)
	if err = db.Model(&models.Subscriber{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = db.Model(&models.Subscriber{}).Where("verified = ?", true).Count(&verified).Error; err != nil {
		return 0, 0, err
	}
	return total, verified, nil
}

func (r *GormRepo) VerifiedEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.DB.WithContext(ctx).
		Model(&models.Subscriber{}).
		Where("verified = ?", true).
		Order("created_at ASC").
		Pluck("email", &emails).Error
	return emails, err
}
