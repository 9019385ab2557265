package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/service"
)

const (
	maxWebhookBody  = 65536
	signatureHeader = "Stripe-Signature"
)

var errBadObject = errors.New("invalid event object")

// StripeWebhook always answers 200 once an event is accepted, including
// events it ignores. A 500 asks Stripe to deliver again.
func (h *PaymentHTTP) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.stripe_webhook")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		l.Warn("stripe_webhook_error", "status", 400, "reason", "unreadable body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	event, err := h.parseEvent(l, c.Request().Header.Get(signatureHeader), body)
	if err != nil {
		l.Warn("stripe_webhook_error", "status", 400, "reason", "rejected payload", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	l = l.With("event_id", event.ID, "event_type", string(event.Type))

	if err := h.dispatch(ctx, l, event); err != nil {
		switch {
		case errors.Is(err, errBadObject):
			l.Warn("stripe_webhook_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, errBadObject.Error())
		case errors.Is(err, service.ErrValidation):
			l.Warn("stripe_webhook_skipped", "status", 200, "error", err)
		default:
			l.Error("stripe_webhook_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *PaymentHTTP) dispatch(ctx context.Context, l *slog.Logger, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("%w: %v", errBadObject, err)
		}
		if sess.Metadata[service.MetaUserID] == "" {
			l.Info("stripe_webhook_ignored", "reason", "no user_id", "session_id", sess.ID)
			return nil
		}
		res, err := h.Svc.FulfillSession(ctx, &sess)
		if err != nil {
			return err
		}
		if res.AlreadyProcessed {
			l.Info("stripe_webhook_duplicate", "session_id", sess.ID)
		}

	case stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("%w: %v", errBadObject, err)
		}
		if pi.Metadata[service.MetaUserID] == "" {
			l.Info("stripe_webhook_ignored", "reason", "no user_id", "payment_intent", pi.ID)
			return nil
		}
		if _, err := h.Svc.RecordFailedPayment(ctx, event.ID, &pi); err != nil {
			return err
		}

	default:
		l.Debug("stripe_webhook_unhandled")
	}
	return nil
}

func (h *PaymentHTTP) parseEvent(l *slog.Logger, sig string, body []byte) (stripe.Event, error) {
	var (
		event stripe.Event
		err   error
	)

	if h.WebhookSecret == "" {
		l.Warn("stripe_webhook_unverified", "reason", "STRIPE_WEBHOOK_SECRET not set")
		if err := json.Unmarshal(body, &event); err != nil {
			return stripe.Event{}, errors.New("invalid payload")
		}
	} else {
		if sig == "" {
			return stripe.Event{}, errors.New("missing signature")
		}
		event, err = webhook.ConstructEventWithOptions(body, sig, h.WebhookSecret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			return stripe.Event{}, errors.New("invalid signature")
		}
	}

	if event.Data == nil {
		return stripe.Event{}, errors.New("invalid payload")
	}
	return event, nil
}
