package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
)

type OrderPage struct {
	Total int64
	Items []models.Order
}

func (s *PaymentService) ListOrders(ctx context.Context, userID uuid.UUID, offset, limit int) (*OrderPage, error) {
	orders, total, err := s.Repo.ListOrders(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Total: total, Items: orders}, nil
}

// GetOrder hides orders of other users behind ErrNotFound.
func (s *PaymentService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}
