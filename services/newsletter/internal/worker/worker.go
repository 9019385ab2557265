// Package worker feeds catalog product events into the newsletter fan-out.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/service"
)

type Announcer interface {
	NotifyNewProduct(ctx context.Context, p events.ProductEvent) (*service.NotifyResult, error)
}

type Worker struct {
	Consumer *events.Consumer
	Notifier Announcer
}

// Enabled reports whether product events can be consumed at all. When no
// broker is configured it warns that new-product emails will not go out.
func Enabled(l *slog.Logger, brokers []string) bool {
	if len(brokers) > 0 {
		return true
	}
	l.Warn("newsletter_fanout_disabled",
		"reason", "KAFKA_BROKERS not set",
		"impact", "subscribers will not be emailed about new products",
	)
	return false
}

// Run blocks until ctx is cancelled or the consumer fails.
func (w *Worker) Run(ctx context.Context) error {
	return w.Consumer.Run(ctx, w.Handle)
}

// Handle announces newly created active products. Other event types are
// ignored. A malformed payload returns an error, which the consumer logs
// before committing the message.
func (w *Worker) Handle(ctx context.Context, msg kafka.Message) error {
	l := logging.FromContext(ctx).With("worker", "newsletter.product_events", "offset", msg.Offset)

	var ev events.ProductEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("decode product event: %w", err)
	}
	if ev.Type != events.ProductCreated {
		return nil
	}
	if !ev.IsActive {
		l.Debug("product_not_announced", "product_id", ev.ProductID, "reason", "inactive")
		return nil
	}

	res, err := w.Notifier.NotifyNewProduct(ctx, ev)
	if err != nil {
		return fmt.Errorf("notify new product %s: %w", ev.ProductID, err)
	}
	l.Info("product_announced", "product_id", ev.ProductID, "sent", res.Sent, "failed", res.Failed)
	return nil
}
