package service

import (
	"time"

	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/mail"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/stripegw"
)

type Settings struct {
	SiteURL          string
	Currency         string
	AllowedCountries []string
	AdminEmail       string
}

// PaymentService creates checkout sessions and turns paid sessions into
// orders. Mail and Events are best effort; a nil Mail skips emails.
type PaymentService struct {
	Repo     *repo.GormRepo
	Stripe   stripegw.Gateway
	Mail     mail.EmailClient
	Events   events.Publisher
	Settings Settings
	Now      func() time.Time
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *PaymentService) publisher() events.Publisher {
	if s.Events == nil {
		return events.Noop{}
	}
	return s.Events
}

func (s *PaymentService) currency() string {
	if s.Settings.Currency == "" {
		return "eur"
	}
	return s.Settings.Currency
}
