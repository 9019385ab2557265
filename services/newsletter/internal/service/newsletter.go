package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/mail"
	"github.com/Skotchmaster/kicks_premium/pkg/util"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/repo"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type NewsletterService struct {
	Repo    *repo.GormRepo
	Mail    mail.EmailClient
	SiteURL string
}

type Stats struct {
	Total      int64 `json:"total"`
	Verified   int64 `json:"verified"`
	Unverified int64 `json:"unverified"`
}

type SubscriberList struct {
	Subscribers []models.Subscriber
	Stats       Stats
}

// Subscribe is idempotent: an address that is already on the list is
// returned with created=false and no welcome email.
func (s *NewsletterService) Subscribe(ctx context.Context, rawEmail string) (*models.Subscriber, bool, error) {
	l := logging.FromContext(ctx).With("svc", "newsletter.subscribe")

	email, ok := util.NormalizeEmail(rawEmail)
	if !ok {
		return nil, false, fmt.Errorf("%w: invalid email", ErrValidation)
	}

	existing, err := s.Repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	sub := &models.Subscriber{Email: email, Verified: true}
	if err := s.Repo.CreateSubscriber(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.Repo.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.sendWelcome(ctx, email)

	l.Info("subscribed", "subscriber_id", sub.ID)
	return sub, true, nil
}

// Unsubscribe reports whether a row was removed. Unknown addresses are not
// an error.
func (s *NewsletterService) Unsubscribe(ctx context.Context, rawEmail string) (bool, error) {
	email, ok := util.NormalizeEmail(rawEmail)
	if !ok {
		return false, fmt.Errorf("%w: invalid email", ErrValidation)
	}

	n, err := s.Repo.DeleteByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *NewsletterService) List(ctx context.Context, verified *bool, limit int) (*SubscriberList, error) {
	limit = util.Clamp(limit, DefaultListLimit, 1, MaxListLimit)

	subs, err := s.Repo.ListSubscribers(ctx, verified, limit)
	if err != nil {
		return nil, err
	}
	total, verifiedCount, err := s.Repo.CountSubscribers(ctx)
	if err != nil {
		return nil, err
	}

	return &SubscriberList{
		Subscribers: subs,
		Stats: Stats{
			Total:      total,
			Verified:   verifiedCount,
			Unverified: total - verifiedCount,
		},
	}, nil
}

func (s *NewsletterService) Delete(ctx context.Context, rawEmail string) error {
	email, ok := util.NormalizeEmail(rawEmail)
	if !ok {
		return fmt.Errorf("%w: email required", ErrValidation)
	}

	n, err := s.Repo.DeleteByEmail(ctx, email)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
