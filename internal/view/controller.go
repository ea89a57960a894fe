// Package view keeps the per-viewer task list in sync with the row store.
package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/filter"
	"github.com/fastygo/taskflow/internal/realtime"
	"github.com/fastygo/taskflow/repository"
)

var ErrClosed = errors.New("view controller closed")

// TaskLister is the read side of the row store used by the controller.
type TaskLister interface {
	ListTasks(ctx context.Context, query repository.TaskQuery) ([]domain.Task, error)
}

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	Tasks   []domain.Task `json:"tasks"`
	Filter  filter.Kind   `json:"filter"`
	UserID  string        `json:"user_id"`
	Loading bool          `json:"loading"`
	Err     error         `json:"-"`
	// Version counts successfully applied reloads.
	Version uint64 `json:"version"`

	stamp uint64
}

type Options struct {
	UserID   string
	Filter   filter.Kind
	Clock    func() time.Time
	Logger   *zap.Logger
	OnChange func(Snapshot)
	// OnRemoteInsert sees each task inserted elsewhere before the reload it triggers.
	OnRemoteInsert func(domain.Task)
}

// Controller holds the loaded tasks for one viewer and the active filter.
// Every local mutation and remote insert leads to a full reload; results that
// arrive after a newer reload, after a filter change, or after Close are dropped.
type Controller struct {
	source   TaskLister
	clock    func() time.Time
	logger   *zap.Logger
	onChange func(Snapshot)
	onRemote func(domain.Task)

	mu       sync.Mutex
	tasks    []domain.Task
	kind     filter.Kind
	userID   string
	inFlight int
	lastErr  error
	issued   uint64
	applied  uint64
	version  uint64
	stamp    uint64
	closed   bool
	subs     []*realtime.Subscription

	notifyMu sync.Mutex
	notified uint64

	reloadCh chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a controller and starts its reload loop. Callers must Close it.
func New(source TaskLister, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Filter == "" {
		opts.Filter = filter.All
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		source:   source,
		clock:    opts.Clock,
		logger:   opts.Logger.With(zap.String("user_id", opts.UserID)),
		onChange: opts.OnChange,
		onRemote: opts.OnRemoteInsert,
		tasks:    []domain.Task{},
		kind:     opts.Filter,
		userID:   opts.UserID,
		reloadCh: make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}

	c.wg.Add(1)
	go c.loop()
	return c
}

// Reload fetches the tasks for the active filter and replaces the held list.
// Without a current user it does nothing.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	userID, kind := c.userID, c.kind
	if userID == "" {
		c.mu.Unlock()
		return nil
	}
	c.issued++
	seq := c.issued
	c.inFlight++
	loading := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(loading)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	now := c.clock()
	tasks, err := c.source.ListTasks(ctx, repository.TaskQuery{Filter: kind, UserID: userID, Now: now})

	c.mu.Lock()
	c.inFlight--
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	stale := seq < c.applied || kind != c.kind || userID != c.userID
	switch {
	case err != nil:
		if !stale {
			c.lastErr = err
		}
	case !stale:
		c.applied = seq
		c.tasks = filter.Apply(tasks, kind, userID, now)
		c.lastErr = nil
		c.version++
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("failed to fetch tasks", zap.String("filter", string(kind)), zap.Error(err))
	}
	c.notify(snap)
	return err
}

// SetFilter switches the active filter and reloads.
func (c *Controller) SetFilter(ctx context.Context, kind filter.Kind) error {
	if !kind.Valid() {
		return domain.ErrInvalidFilter
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.kind = kind
	c.mu.Unlock()
	return c.Reload(ctx)
}

// RequestReload schedules a reload on the controller loop. Requests made while
// one is already queued are merged into it.
func (c *Controller) RequestReload() {
	select {
	case c.reloadCh <- struct{}{}:
	default:
	}
}

// ApplyRemoteInsert reacts to a task inserted elsewhere. The filter has to be
// evaluated against the whole result again, so this schedules a reload instead
// of appending locally.
func (c *Controller) ApplyRemoteInsert(task domain.Task) {
	c.logger.Debug("remote task insert", zap.String("task_id", task.ID))
	if c.onRemote != nil {
		c.onRemote(task)
	}
	c.RequestReload()
}

// Watch consumes inserts from sub until it ends or the controller is closed.
// The controller takes ownership of sub and closes it on Close.
func (c *Controller) Watch(sub *realtime.Subscription) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = sub.Close()
		return ErrClosed
	}
	c.subs = append(c.subs, sub)
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			case event, ok := <-sub.C:
				if !ok {
					return
				}
				task, err := event.Task()
				if err != nil {
					c.logger.Warn("ignoring realtime event", zap.String("event_id", event.ID), zap.Error(err))
					continue
				}
				c.ApplyRemoteInsert(task)
			}
		}
	}()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the loop, tears down watched subscriptions and waits for them.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	c.cancel()
	var result error
	for _, sub := range subs {
		result = errors.Join(result, sub.Close())
	}
	c.wg.Wait()
	return result
}

func (c *Controller) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.reloadCh:
			_ = c.Reload(c.ctx)
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	c.stamp++
	tasks := make([]domain.Task, len(c.tasks))
	copy(tasks, c.tasks)
	return Snapshot{
		Tasks:   tasks,
		Filter:  c.kind,
		UserID:  c.userID,
		Loading: c.inFlight > 0,
		Err:     c.lastErr,
		Version: c.version,
		stamp:   c.stamp,
	}
}

// notify delivers snapshots to OnChange in the order they were taken.
func (c *Controller) notify(snap Snapshot) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.stamp <= c.notified {
		return
	}
	c.notified = snap.stamp
	c.onChange(snap)
}
