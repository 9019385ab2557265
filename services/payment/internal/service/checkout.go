package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/snapshot"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/transport"
)

const (
	MetaUserID     = "user_id"
	MetaUserEmail  = "user_email"
	MetaItemsCount = "items_count"
)

type Customer struct {
	ID    uuid.UUID
	Email string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CreateCheckoutSession prices every line from the products table, never
// from the request, and opens a Stripe Checkout session for them.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, customer Customer, items []transport.CheckoutItem) (*CheckoutSession, error) {
	l := logging.FromContext(ctx).With("svc", "payment.create_checkout_session")

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart empty", ErrValidation)
	}

	ids := make([]uuid.UUID, 0, len(items))
	for i, it := range items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: invalid product_id", ErrValidation, i)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d: quantity must be at least 1", ErrValidation, i)
		}
		ids = append(ids, id)
	}

	products, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(items))
	snap := make([]models.LineItem, 0, len(items))
	for i, it := range items {
		p, ok := products[ids[i]]
		if !ok || !p.IsActive {
			return nil, fmt.Errorf("%w: product %s is not available", ErrValidation, it.ProductID)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("%w: product %s has no valid price", ErrValidation, it.ProductID)
		}

		img := p.FirstImage()
		if img == "" {
			img = it.Image
		}

		lineItems = append(lineItems, lineItem(p, it, img, s.currency()))
		snap = append(snap, models.LineItem{
			ID:    p.ID.String(),
			Name:  p.Name,
			Brand: p.Brand,
			Price: p.Price,
			Qty:   it.Quantity,
			Size:  it.Size,
			Img:   img,
		})
	}

	md := map[string]string{
		MetaUserID:     customer.ID.String(),
		MetaUserEmail:  customer.Email,
		MetaItemsCount: strconv.Itoa(len(items)),
	}
	if err := snapshot.Put(md, snap); err != nil {
		if errors.Is(err, snapshot.ErrTooLarge) {
			return nil, fmt.Errorf("%w: too many items in cart", ErrValidation)
		}
		return nil, err
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:                lineItems,
		SuccessURL:               stripe.String(s.Settings.SiteURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:                stripe.String(s.Settings.SiteURL + "/checkout/cancel"),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Metadata: maps.Clone(md),
		},
	}
	if customer.Email != "" {
		params.CustomerEmail = stripe.String(customer.Email)
	}
	if len(s.Settings.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionCreateShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(s.Settings.AllowedCountries),
		}
	}
	for k, v := range md {
		params.AddMetadata(k, v)
	}

	sess, err := s.Stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		l.Error("stripe_session_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	l.Info("checkout_session_created", "session_id", sess.ID, "user_id", customer.ID, "items", len(items))
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func lineItem(p models.Product, it transport.CheckoutItem, img, currency string) *stripe.CheckoutSessionCreateLineItemParams {
	name := p.Name
	if p.Brand != "" {
		name = p.Brand + " - " + p.Name
	}

	product := &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
		Name: stripe.String(name),
	}
	if it.Size != "" {
		product.Description = stripe.String("Size: " + it.Size)
	}
	if img != "" {
		product.Images = []*string{stripe.String(img)}
	}

	return &stripe.CheckoutSessionCreateLineItemParams{
		PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
			Currency:    stripe.String(currency),
			UnitAmount:  stripe.Int64(p.Price),
			ProductData: product,
		},
		Quantity: stripe.Int64(int64(it.Quantity)),
	}
}
