// Package stripegw wraps the Stripe Checkout Sessions API.
package stripegw

import (
	"context"

	"github.com/stripe/stripe-go/v82"
)

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	// ListCheckoutSessions returns up to limit sessions, newest first.
	ListCheckoutSessions(ctx context.Context, limit int) ([]*stripe.CheckoutSession, error)
}

// Client calls Stripe with the request context, so cancellation and
// deadlines reach the HTTP call.
type Client struct {
	sc *stripe.Client
}

func New(secretKey string, opts ...stripe.ClientOption) *Client {
	return &Client{sc: stripe.NewClient(secretKey, opts...)}
}

func (c *Client) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	return c.sc.V1CheckoutSessions.Create(ctx, params)
}

func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	return c.sc.V1CheckoutSessions.Retrieve(ctx, id, nil)
}

func (c *Client) ListCheckoutSessions(ctx context.Context, limit int) ([]*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionListParams{}
	params.Limit = stripe.Int64(int64(limit))

	out := make([]*stripe.CheckoutSession, 0, limit)
	for sess, err := range c.sc.V1CheckoutSessions.List(ctx, params) {
		if err != nil {
			return out, err
		}
		out = append(out, sess)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
