package stripegw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

type fakeStripe struct {
	calls atomic.Int32
	mux   *http.ServeMux
}

func newClient(t *testing.T, routes map[string]http.HandlerFunc) (*Client, *fakeStripe) {
	t.Helper()
	f := &fakeStripe{mux: http.NewServeMux()}
	for pattern, h := range routes {
		f.mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return New("sk_test_123", stripe.WithBackends(backends)), f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateCheckoutSession_SendsParams(t *testing.T) {
	t.Parallel()

	c, _ := newClient(t, map[string]http.HandlerFunc{
		"POST /v1/checkout/sessions": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Equal(t, "18000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "user-1", r.PostForm.Get("metadata[user_id]"))
			writeJSON(w, map[string]any{"id": "cs_test_1", "object": "checkout.session", "url": "https://checkout.stripe.com/c/cs_test_1"})
		},
	})

	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:    stripe.String("eur"),
				UnitAmount:  stripe.Int64(18000),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{Name: stripe.String("Nike - Dunk Low")},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.AddMetadata("user_id", "user-1")

	sess, err := c.CreateCheckoutSession(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_test_1", sess.URL)
}

func TestGetCheckoutSession(t *testing.T) {
	t.Parallel()

	c, _ := newClient(t, map[string]http.HandlerFunc{
		"GET /v1/checkout/sessions/cs_test_9": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"id": "cs_test_9", "object": "checkout.session", "amount_total": 25000, "payment_status": "paid"})
		},
	})

	sess, err := c.GetCheckoutSession(context.Background(), "cs_test_9")
	require.NoError(t, err)
	assert.Equal(t, int64(25000), sess.AmountTotal)
	assert.Equal(t, stripe.CheckoutSessionPaymentStatusPaid, sess.PaymentStatus)
}

func TestListCheckoutSessions_StopsAtLimit(t *testing.T) {
	t.Parallel()

	c, f := newClient(t, map[string]http.HandlerFunc{
		"GET /v1/checkout/sessions": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			writeJSON(w, map[string]any{
				"object":   "list",
				"url":      "/v1/checkout/sessions",
				"has_more": true,
				"data": []map[string]any{
					{"id": "cs_3", "object": "checkout.session"},
					{"id": "cs_2", "object": "checkout.session"},
				},
			})
		},
	})

	sessions, err := c.ListCheckoutSessions(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "cs_3", sessions[0].ID)
	assert.Equal(t, "cs_2", sessions[1].ID)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestClient_HonoursContext(t *testing.T) {
	t.Parallel()

	slow := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
			writeJSON(w, map[string]any{"id": "cs_late", "object": "checkout.session"})
		}
	}
	c, f := newClient(t, map[string]http.HandlerFunc{
		"POST /v1/checkout/sessions":       slow,
		"GET /v1/checkout/sessions/cs_any": slow,
		"GET /v1/checkout/sessions":        slow,
	})

	t.Run("cancelled before the call", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.CreateCheckoutSession(ctx, &stripe.CheckoutSessionCreateParams{})
		assert.ErrorIs(t, err, context.Canceled)
		_, err = c.GetCheckoutSession(ctx, "cs_any")
		assert.ErrorIs(t, err, context.Canceled)
		_, err = c.ListCheckoutSessions(ctx, 5)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), f.calls.Load())
	})

	t.Run("deadline during the call", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := c.GetCheckoutSession(ctx, "cs_any")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}
