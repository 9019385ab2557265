package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/snapshot"
)

type FulfillResult struct {
	Order *models.Order
	// AlreadyProcessed reports that an order for this session or event
	// existed, so nothing was written or sent.
	AlreadyProcessed bool
}

// FulfillSession records a paid checkout session as a completed order and
// settles stock for it. Delivering the same session twice yields one order.
func (s *PaymentService) FulfillSession(ctx context.Context, sess *stripe.CheckoutSession) (*FulfillResult, error) {
	return s.fulfill(ctx, sess, s.now())
}

func (s *PaymentService) fulfill(ctx context.Context, sess *stripe.CheckoutSession, createdAt time.Time) (*FulfillResult, error) {
	l := logging.FromContext(ctx).With("svc", "payment.fulfill", "session_id", sess.ID)

	if sess.ID == "" {
		return nil, fmt.Errorf("%w: session id missing", ErrValidation)
	}
	userID, err := metadataUser(sess.Metadata)
	if err != nil {
		return nil, err
	}

	var notes []string
	items, err := snapshot.Decode(sess.Metadata)
	if err != nil {
		l.Warn("snapshot_unreadable", "error", err)
		notes = append(notes, "cart snapshot unreadable")
	}

	total := sess.AmountTotal
	if total == 0 {
		total = s.refetchTotal(ctx, sess.ID)
	}

	sessionID := sess.ID
	order := &models.Order{
		UserID:          userID,
		StripeSessionID: &sessionID,
		TotalAmount:     total,
		Currency:        s.currencyOr(string(sess.Currency)),
		Status:          models.StatusCompleted,
		BillingEmail:    billingEmail(sess),
		Items:           items,
		CreatedAt:       createdAt,
	}
	if sess.PaymentIntent != nil {
		order.StripePaymentIntentID = sess.PaymentIntent.ID
	}
	if cd := sess.CustomerDetails; cd != nil {
		order.ShippingName = cd.Name
		order.ShippingPhone = cd.Phone
		if a := cd.Address; a != nil {
			order.ShippingAddress = models.Address{
				Line1:      a.Line1,
				Line2:      a.Line2,
				City:       a.City,
				State:      a.State,
				PostalCode: a.PostalCode,
				Country:    a.Country,
			}
		}
	}

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Info("order_already_processed")
			return &FulfillResult{AlreadyProcessed: true}, nil
		}
		return nil, err
	}

	notes = append(notes, s.settleStock(ctx, order.Items)...)
	if len(notes) > 0 {
		order.NeedsReview = true
		order.ReviewNotes = strings.Join(notes, "; ")
		if err := s.Repo.MarkForReview(ctx, order.ID, order.ReviewNotes); err != nil {
			l.Error("mark_for_review_failed", "order_id", order.ID, "error", err)
		}
		l.Warn("order_needs_review", "order_id", order.ID, "notes", order.ReviewNotes)
	}

	s.sendOrderEmails(ctx, order)
	s.publishOrder(ctx, events.OrderCompleted, order)

	l.Info("order_fulfilled", "order_id", order.ID, "user_id", order.UserID, "total_amount", order.TotalAmount)
	return &FulfillResult{Order: order}, nil
}

// RecordFailedPayment keeps an audit row for a failed payment intent. Stock
// is left alone. The Stripe event id makes redelivery a no-op.
func (s *PaymentService) RecordFailedPayment(ctx context.Context, eventID string, pi *stripe.PaymentIntent) (*FulfillResult, error) {
	l := logging.FromContext(ctx).With("svc", "payment.record_failed", "event_id", eventID)

	if eventID == "" || pi == nil {
		return nil, fmt.Errorf("%w: event id or payment intent missing", ErrValidation)
	}
	userID, err := metadataUser(pi.Metadata)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:                userID,
		StripeEventID:         &eventID,
		StripePaymentIntentID: pi.ID,
		TotalAmount:           pi.Amount,
		Currency:              s.currencyOr(string(pi.Currency)),
		Status:                models.StatusFailed,
		BillingEmail:          pi.Metadata[MetaUserEmail],
		CreatedAt:             s.now(),
	}
	items, err := snapshot.Decode(pi.Metadata)
	if err != nil {
		l.Warn("snapshot_unreadable", "error", err)
		order.NeedsReview = true
		order.ReviewNotes = "cart snapshot unreadable"
	}
	order.Items = items

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Info("failed_payment_already_recorded")
			return &FulfillResult{AlreadyProcessed: true}, nil
		}
		return nil, err
	}

	s.publishOrder(ctx, events.OrderFailed, order)

	l.Info("failed_payment_recorded", "order_id", order.ID, "payment_intent", pi.ID)
	return &FulfillResult{Order: order}, nil
}

// settleStock re-checks each purchased line against the current product and
// decrements stock. It returns review notes; nothing here fails the order.
func (s *PaymentService) settleStock(ctx context.Context, items []models.LineItem) []string {
	l := logging.FromContext(ctx).With("svc", "payment.settle_stock")

	var notes []string
	ids := make([]uuid.UUID, len(items))
	lookup := make([]uuid.UUID, 0, len(items))
	for i, it := range items {
		id, err := uuid.Parse(it.ID)
		if err != nil {
			continue
		}
		ids[i] = id
		lookup = append(lookup, id)
	}

	products, err := s.Repo.ProductsByIDs(ctx, lookup)
	if err != nil {
		l.Error("load_products_failed", "error", err)
		return append(notes, "stock not updated: products unavailable")
	}

	for i, it := range items {
		if it.Qty < 1 {
			notes = append(notes, fmt.Sprintf("line %d (%s): invalid quantity %d", i+1, it.ID, it.Qty))
			continue
		}
		if ids[i] == uuid.Nil {
			notes = append(notes, fmt.Sprintf("line %d: unknown product id %q", i+1, it.ID))
			continue
		}
		p, ok := products[ids[i]]
		if !ok {
			notes = append(notes, fmt.Sprintf("line %d: product %s no longer exists", i+1, it.ID))
			continue
		}
		if p.Price != it.Price {
			notes = append(notes, fmt.Sprintf("line %d: price of %s is %d, paid %d", i+1, it.ID, p.Price, it.Price))
		}

		if err := s.Repo.DecrementStock(ctx, p.ID, it.Size, it.Qty); err != nil {
			l.Error("stock_decrement_failed", "product_id", p.ID, "size", it.Size, "qty", it.Qty, "error", err)
			notes = append(notes, fmt.Sprintf("line %d: stock not updated for %s", i+1, it.ID))
		}
	}
	return notes
}

func (s *PaymentService) refetchTotal(ctx context.Context, sessionID string) int64 {
	if s.Stripe == nil {
		return 0
	}
	fresh, err := s.Stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		logging.FromContext(ctx).Warn("session_refetch_failed", "session_id", sessionID, "error", err)
		return 0
	}
	return fresh.AmountTotal
}

func (s *PaymentService) publishOrder(ctx context.Context, eventType string, order *models.Order) {
	ev := events.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID.String(),
		UserID:      order.UserID.String(),
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		OccurredAt:  s.now(),
	}
	if order.StripeSessionID != nil {
		ev.SessionID = *order.StripeSessionID
	}
	if err := s.publisher().PublishEvent(ctx, events.TopicOrders, ev.OrderID, ev); err != nil {
		logging.FromContext(ctx).Warn("order_event_publish_failed", "type", eventType, "order_id", order.ID, "error", err)
	}
}

func (s *PaymentService) currencyOr(c string) string {
	if c != "" {
		return strings.ToLower(c)
	}
	return s.currency()
}

func metadataUser(md map[string]string) (uuid.UUID, error) {
	raw := md[MetaUserID]
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: metadata.user_id missing", ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: metadata.user_id %q is not a user id", ErrValidation, raw)
	}
	return id, nil
}

func billingEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	if sess.CustomerEmail != "" {
		return sess.CustomerEmail
	}
	return sess.Metadata[MetaUserEmail]
}
