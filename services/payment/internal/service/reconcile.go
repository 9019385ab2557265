package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/util"
)

const (
	DefaultSyncLimit = 100
	MaxSyncLimit     = 100
)

type SyncReport struct {
	Synced         int
	Skipped        int
	Errors         []string
	TotalProcessed int
}

func (r *SyncReport) Message() string {
	return fmt.Sprintf("Synced %d orders, skipped %d", r.Synced, r.Skipped)
}

// SyncOrders replays recent paid sessions that never produced an order,
// e.g. because a webhook delivery was lost. Sessions are handled one at a
// time; a failing session is reported and the batch continues.
func (s *PaymentService) SyncOrders(ctx context.Context, limit int) (*SyncReport, error) {
	l := logging.FromContext(ctx).With("svc", "payment.sync_orders")

	limit = util.Clamp(limit, DefaultSyncLimit, 1, MaxSyncLimit)

	sessions, err := s.Stripe.ListCheckoutSessions(ctx, limit)
	if err != nil {
		l.Error("list_sessions_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	report := &SyncReport{Errors: []string{}, TotalProcessed: len(sessions)}
	for _, sess := range sessions {
		if sess.Metadata[MetaUserID] == "" || sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			report.Skipped++
			continue
		}

		recorded, err := s.Repo.SessionRecorded(ctx, sess.ID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", sess.ID, err))
			continue
		}
		if recorded {
			report.Skipped++
			continue
		}

		res, err := s.fulfill(ctx, sess, time.Unix(sess.Created, 0).UTC())
		if err != nil {
			l.Warn("sync_session_failed", "session_id", sess.ID, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", sess.ID, err))
			continue
		}
		if res.AlreadyProcessed {
			report.Skipped++
			continue
		}
		report.Synced++
	}

	l.Info("sync_completed", "synced", report.Synced, "skipped", report.Skipped, "errors", len(report.Errors), "total", report.TotalProcessed)
	return report, nil
}
