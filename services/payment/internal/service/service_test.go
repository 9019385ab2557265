package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/Skotchmaster/kicks_premium/pkg/db/dbtest"
	"github.com/Skotchmaster/kicks_premium/pkg/events/eventstest"
	"github.com/Skotchmaster/kicks_premium/pkg/mail/mailtest"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/snapshot"
)

type fakeGateway struct {
	mu        sync.Mutex
	created   []*stripe.CheckoutSessionCreateParams
	sessions  map[string]*stripe.CheckoutSession
	list      []*stripe.CheckoutSession
	listLimit int
	err       error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, params)
	return &stripe.CheckoutSession{ID: "cs_test_new", URL: "https://checkout.stripe.com/c/pay/cs_test_new"}, nil
}

func (f *fakeGateway) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, errors.New("no such checkout.session")
}

func (f *fakeGateway) ListCheckoutSessions(ctx context.Context, limit int) ([]*stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.list) > limit {
		return f.list[:limit], nil
	}
	return f.list, nil
}

type testEnv struct {
	svc     *PaymentService
	repo    *repo.GormRepo
	gateway *fakeGateway
	mail    *mailtest.Recorder
	events  *eventstest.Recorder
}

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := dbtest.Open(t, &models.Order{}, &models.Product{})

	env := &testEnv{
		repo:    &repo.GormRepo{DB: gdb},
		gateway: &fakeGateway{sessions: map[string]*stripe.CheckoutSession{}},
		mail:    &mailtest.Recorder{},
		events:  &eventstest.Recorder{},
	}
	env.svc = &PaymentService{
		Repo:   env.repo,
		Stripe: env.gateway,
		Mail:   env.mail,
		Events: env.events,
		Settings: Settings{
			SiteURL:          "https://kicks.example.com",
			Currency:         "eur",
			AllowedCountries: []string{"ES", "FR"},
			AdminEmail:       "admin@kicks.example.com",
		},
		Now: func() time.Time { return fixedNow },
	}
	return env
}

func (env *testEnv) seedProduct(t *testing.T, p models.Product) models.Product {
	t.Helper()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Name == "" {
		p.Name = "Air Jordan 1"
	}
	if p.Version == 0 {
		p.Version = 1
	}
	require.NoError(t, env.repo.DB.Create(&p).Error)
	return p
}

func (env *testEnv) product(t *testing.T, id uuid.UUID) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, env.repo.DB.First(&p, "id = ?", id).Error)
	return p
}

func (env *testEnv) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.repo.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}

func paidSession(t *testing.T, id string, user uuid.UUID, total int64, items ...models.LineItem) *stripe.CheckoutSession {
	t.Helper()
	md := map[string]string{
		MetaUserID:    user.String(),
		MetaUserEmail: "buyer@example.com",
	}
	require.NoError(t, snapshot.Put(md, items))
	return &stripe.CheckoutSession{
		ID:            id,
		AmountTotal:   total,
		Currency:      stripe.CurrencyEUR,
		Metadata:      md,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Created:       fixedNow.Add(-time.Hour).Unix(),
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_" + id},
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "buyer@example.com",
			Name:  "Ada Lovelace",
			Phone: "+34600000000",
			Address: &stripe.Address{
				Line1:      "Gran Via 1",
				City:       "Madrid",
				PostalCode: "28013",
				Country:    "ES",
			},
		},
	}
}
