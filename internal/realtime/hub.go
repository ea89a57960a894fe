package realtime

import (
	"context"
	"sync"
)

// Hub is an in-process Publisher and Subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: defaultBuffer}
}

func (h *Hub) Publish(ctx context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !event.Matches(sub.relation, sub.predicate) {
			continue
		}
		sub.deliver(ctx, event)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, relation string, p Predicate) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sub *Subscription
	sub = newSubscription(relation, p, h.buffer, func() error {
		// Publishers hold the read lock while sending, so C can be closed once the write lock is held.
		h.mu.Lock()
		delete(h.subs, sub)
		sub.closeOut()
		h.mu.Unlock()
		return nil
	})

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var (
	_ Publisher  = (*Hub)(nil)
	_ Subscriber = (*Hub)(nil)
)
