package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/service"
)

type fakeAnnouncer struct {
	got []events.ProductEvent
	err error
}

func (f *fakeAnnouncer) NotifyNewProduct(ctx context.Context, p events.ProductEvent) (*service.NotifyResult, error) {
	f.got = append(f.got, p)
	if f.err != nil {
		return nil, f.err
	}
	return &service.NotifyResult{Sent: 1}, nil
}

func message(t *testing.T, ev events.ProductEvent) kafka.Message {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafka.Message{Topic: events.TopicProducts, Key: []byte(ev.ProductID), Value: b}
}

func TestHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ev        events.ProductEvent
		announced bool
	}{
		{name: "active product created", ev: events.ProductEvent{Type: events.ProductCreated, ProductID: "p1", Name: "Dunk Low", IsActive: true}, announced: true},
		{name: "inactive product created", ev: events.ProductEvent{Type: events.ProductCreated, ProductID: "p2", Name: "Draft"}},
		{name: "product updated", ev: events.ProductEvent{Type: "product_updated", ProductID: "p3", IsActive: true}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fa := &fakeAnnouncer{}
			w := &Worker{Notifier: fa}

			require.NoError(t, w.Handle(context.Background(), message(t, tc.ev)))
			if tc.announced {
				require.Len(t, fa.got, 1)
				assert.Equal(t, tc.ev.ProductID, fa.got[0].ProductID)
			} else {
				assert.Empty(t, fa.got)
			}
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	t.Parallel()

	w := &Worker{Notifier: &fakeAnnouncer{}}
	err := w.Handle(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)

	boom := errors.New("db down")
	w = &Worker{Notifier: &fakeAnnouncer{err: boom}}
	err = w.Handle(context.Background(), message(t, events.ProductEvent{Type: events.ProductCreated, ProductID: "p1", IsActive: true}))
	assert.ErrorIs(t, err, boom)
}

func TestEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logging.NewWithWriter(&buf, "info")

	assert.True(t, Enabled(l, []string{"kafka:9092"}))
	assert.Empty(t, buf.String())

	assert.False(t, Enabled(l, nil))
	assert.Contains(t, buf.String(), "newsletter_fanout_disabled")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "KAFKA_BROKERS not set")
}
