// Package mailtest provides an in-memory EmailClient for tests.
package mailtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Skotchmaster/kicks_premium/pkg/mail"
)

type Recorder struct {
	mu   sync.Mutex
	sent []mail.Message
	// FailFor makes Send fail for recipients containing any of these substrings.
	FailFor []string
	Err     error
}

func (r *Recorder) Send(ctx context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.FailFor {
		if strings.Contains(msg.To, f) {
			if r.Err != nil {
				return r.Err
			}
			return errors.New("send failed")
		}
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *Recorder) Sent() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mail.Message, len(r.sent))
	copy(out, r.sent)
	return out
}
