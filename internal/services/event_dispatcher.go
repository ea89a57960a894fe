package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/infrastructure/outbox"
	"github.com/fastygo/taskflow/internal/realtime"
	"github.com/fastygo/taskflow/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// DispatcherConfig controls outbox draining and the publish circuit breaker.
type DispatcherConfig struct {
	Interval        time.Duration
	BatchSize       int
	MaxRetries      int
	Retention       time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// EventDispatcher publishes realtime insert events. Events that cannot be
// published right away are parked in the outbox and redelivered on a schedule.
type EventDispatcher struct {
	publisher realtime.Publisher
	store     *outbox.Store
	monitor   ConnectionHealth
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       DispatcherConfig
}

func NewEventDispatcher(
	publisher realtime.Publisher,
	store *outbox.Store,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg DispatcherConfig,
) *EventDispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &EventDispatcher{
		publisher: publisher,
		store:     store,
		monitor:   monitor,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "realtime-publish",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	drainEvery := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = d.cron.AddFunc(drainEvery, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := d.Drain(ctx); err != nil {
			d.logger.Error("outbox drain failed", zap.Error(err))
		}
	})
	_, _ = d.cron.AddFunc("@hourly", func() {
		removed, err := d.store.Cleanup(time.Now().Add(-cfg.Retention))
		if err != nil {
			d.logger.Error("outbox cleanup failed", zap.Error(err))
			return
		}
		if removed > 0 {
			d.logger.Warn("expired undelivered events", zap.Int("count", removed))
		}
	})

	return d
}

// Start launches the cron scheduler.
func (d *EventDispatcher) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("event dispatcher started")
}

// Stop gracefully stops the scheduler.
func (d *EventDispatcher) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	d.logger.Info("event dispatcher stopped")
}

func (d *EventDispatcher) TaskInserted(ctx context.Context, task domain.Task) error {
	event, err := realtime.NewTaskInsert(task)
	if err != nil {
		return err
	}
	return d.Dispatch(ctx, event, outbox.PriorityTask)
}

func (d *EventDispatcher) NotificationInserted(ctx context.Context, n domain.Notification) error {
	event, err := realtime.NewNotificationInsert(n)
	if err != nil {
		return err
	}
	return d.Dispatch(ctx, event, outbox.PriorityNotification)
}

// Dispatch publishes the event immediately when Redis looks reachable and
// falls back to the outbox otherwise.
func (d *EventDispatcher) Dispatch(ctx context.Context, event realtime.Event, priority int) error {
	if d.monitor == nil || d.monitor.IsOnline() {
		err := d.publish(ctx, event)
		if err == nil {
			return nil
		}
		d.logger.Warn("realtime publish failed, queueing event",
			zap.String("event_id", event.ID),
			zap.String("relation", event.Relation),
			zap.Error(err))
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if d.store == nil {
		return fmt.Errorf("event %s not delivered and no outbox configured", event.ID)
	}
	return d.store.Enqueue(outbox.Item{
		ID:       event.ID,
		Relation: event.Relation,
		Event:    payload,
		Priority: priority,
	})
}

// Drain redelivers queued events in order until the batch is exhausted.
func (d *EventDispatcher) Drain(ctx context.Context) error {
	if d == nil || d.store == nil {
		return nil
	}
	if d.monitor != nil && !d.monitor.IsOnline() {
		d.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := d.store.Peek(d.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		var event realtime.Event
		if err := json.Unmarshal(item.Event, &event); err != nil {
			d.logger.Warn("dropping undecodable outbox item", zap.String("item_id", item.ID), zap.Error(err))
			_ = d.store.Ack(item)
			continue
		}

		if err := d.publish(ctx, event); err != nil {
			if item.Retries+1 >= d.cfg.MaxRetries {
				d.logger.Warn("dropping outbox item (max retries reached)", zap.String("item_id", item.ID), zap.Error(err))
				_ = d.store.Ack(item)
				continue
			}
			if rqErr := d.store.Retry(item, err); rqErr != nil {
				d.logger.Error("failed to requeue outbox item", zap.String("item_id", item.ID), zap.Error(rqErr))
			}
			continue
		}

		if err := d.store.Ack(item); err != nil {
			d.logger.Warn("failed to purge delivered outbox item", zap.String("item_id", item.ID), zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of queued events.
func (d *EventDispatcher) Size() int {
	if d == nil || d.store == nil {
		return 0
	}
	size, err := d.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (d *EventDispatcher) publish(ctx context.Context, event realtime.Event) error {
	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.publisher.Publish(ctx, event)
	})
	return err
}

var _ usecase.EventPublisher = (*EventDispatcher)(nil)
