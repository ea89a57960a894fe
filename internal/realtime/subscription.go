package realtime

import (
	"context"
	"sync"
)

const defaultBuffer = 64

// Publisher delivers events to current subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber opens scoped event streams.
type Subscriber interface {
	Subscribe(ctx context.Context, relation string, p Predicate) (*Subscription, error)
}

// Subscription is a live event stream. C is closed after Close returns
// or when the context passed to Subscribe is cancelled.
type Subscription struct {
	C <-chan Event

	relation  string
	predicate Predicate
	out       chan Event
	done      chan struct{}
	once      sync.Once
	teardown  func() error
	err       error
}

func newSubscription(relation string, p Predicate, buffer int, teardown func() error) *Subscription {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	out := make(chan Event, buffer)
	return &Subscription{
		C:         out,
		relation:  relation,
		predicate: p,
		out:       out,
		done:      make(chan struct{}),
		teardown:  teardown,
	}
}

func (s *Subscription) Relation() string     { return s.relation }
func (s *Subscription) Predicate() Predicate { return s.predicate }

// Done is closed once the subscription has been torn down.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close tears the subscription down. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.teardown != nil {
			s.err = s.teardown()
		}
	})
	return s.err
}

// deliver hands an event to the consumer, giving up when the subscription or ctx ends.
func (s *Subscription) deliver(ctx context.Context, event Event) bool {
	select {
	case s.out <- event:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// closeOut closes C; only the single producer goroutine may call it.
func (s *Subscription) closeOut() {
	close(s.out)
}
