// Package eventstest records published events for assertions.
package eventstest

import (
	"context"
	"sync"
)

type Published struct {
	Topic string
	Key   string
	Event any
}

type Recorder struct {
	Err error

	mu     sync.Mutex
	events []Published
}

func (r *Recorder) PublishEvent(ctx context.Context, topic, key string, event any) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}
