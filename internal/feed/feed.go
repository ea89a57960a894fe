// Package feed keeps a user's notification list current, newest first.
package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/realtime"
)

var ErrClosed = errors.New("notification feed closed")

const defaultLimit = 100

type NotificationLister interface {
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
}

type Options struct {
	UserID   string
	Limit    int
	Logger   *zap.Logger
	OnInsert func(domain.Notification)
}

type Feed struct {
	source     NotificationLister
	subscriber realtime.Subscriber
	userID     string
	limit      int
	logger     *zap.Logger
	onInsert   func(domain.Notification)

	mu      sync.RWMutex
	items   []domain.Notification
	seen    map[string]struct{}
	sub     *realtime.Subscription
	started bool
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(source NotificationLister, subscriber realtime.Subscriber, opts Options) *Feed {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Feed{
		source:     source,
		subscriber: subscriber,
		userID:     opts.UserID,
		limit:      opts.Limit,
		logger:     opts.Logger.With(zap.String("user_id", opts.UserID)),
		onInsert:   opts.OnInsert,
		items:      []domain.Notification{},
		seen:       make(map[string]struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start subscribes to the user's notification inserts and loads the existing ones.
// The subscription is opened before the initial load so no insert falls in between;
// rows delivered by both are kept once. Without a user Start does nothing.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.started || f.userID == "" {
		f.mu.Unlock()
		return nil
	}
	f.started = true
	f.mu.Unlock()

	sub, err := f.subscriber.Subscribe(f.ctx, realtime.RelationNotifications, realtime.Eq("user_id", f.userID))
	if err != nil {
		return err
	}

	existing, err := f.source.ListNotifications(ctx, f.userID, f.limit)
	if err != nil {
		_ = sub.Close()
		f.logger.Error("failed to load notifications", zap.Error(err))
		return err
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = sub.Close()
		return ErrClosed
	}
	for _, n := range existing {
		if _, dup := f.seen[n.ID]; dup {
			continue
		}
		f.seen[n.ID] = struct{}{}
		f.items = append(f.items, n)
	}
	f.sub = sub
	f.wg.Add(1)
	f.mu.Unlock()

	go f.pump(sub)
	return nil
}

// Prepend puts n at the head of the list unless it is already present.
func (f *Feed) Prepend(n domain.Notification) bool {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return false
	}
	if _, dup := f.seen[n.ID]; dup {
		f.mu.Unlock()
		return false
	}
	f.seen[n.ID] = struct{}{}
	f.items = append([]domain.Notification{n}, f.items...)
	f.mu.Unlock()

	if f.onInsert != nil {
		f.onInsert(n)
	}
	return true
}

// Items returns a copy of the list, newest first.
func (f *Feed) Items() []domain.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Close tears down the subscription and waits for the delivery goroutine.
func (f *Feed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	sub := f.sub
	f.mu.Unlock()

	f.cancel()
	var err error
	if sub != nil {
		err = sub.Close()
	}
	f.wg.Wait()
	return err
}

func (f *Feed) pump(sub *realtime.Subscription) {
	defer f.wg.Done()
	for {
		select {
		case <-f.ctx.Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			n, err := event.Notification()
			if err != nil {
				f.logger.Warn("ignoring realtime event", zap.String("event_id", event.ID), zap.Error(err))
				continue
			}
			f.Prepend(n)
		}
	}
}
