package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/feed"
	"github.com/fastygo/taskflow/internal/filter"
	"github.com/fastygo/taskflow/internal/realtime"
	"github.com/fastygo/taskflow/internal/view"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	appLogger "github.com/fastygo/taskflow/pkg/logger"
)

const (
	defaultHeartbeat = 25 * time.Second
	streamBuffer     = 16
)

type sseEvent struct {
	name string
	id   string
	data interface{}
}

// StreamHandler serves Server-Sent-Event streams backed by a view controller
// (tasks) or a notification feed, one per connection.
type StreamHandler struct {
	baseHandler
	tasks         view.TaskLister
	notifications feed.NotificationLister
	subscriber    realtime.Subscriber
	heartbeat     time.Duration
	limit         int
}

func NewStreamHandler(
	tasks view.TaskLister,
	notifications feed.NotificationLister,
	subscriber realtime.Subscriber,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
	heartbeat time.Duration,
	limit int,
) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &StreamHandler{
		baseHandler:   newBaseHandler(adapter, logger),
		tasks:         tasks,
		notifications: notifications,
		subscriber:    subscriber,
		heartbeat:     heartbeat,
		limit:         limit,
	}
}

// @Summary Stream the caller's task list
// @Description Emits `tasks` after every applied reload and `assigned` when a task is assigned to the caller.
// @Tags tasks
// @Produce text/event-stream
// @Router /api/v1/tasks/stream [get]
func (h *StreamHandler) Tasks(ctx *fasthttp.RequestCtx) {
	userID := h.currentUser(ctx)
	if userID == "" {
		return
	}
	kind, err := filter.ParseKind(string(ctx.QueryArgs().Peek("filter")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.streamContext(ctx)
	log := appLogger.WithRequestID(stdCtx, h.logger).With(zap.String("user_id", userID))
	prepareStream(ctx)

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		events := make(chan sseEvent, streamBuffer)
		push := func(ev sseEvent) {
			select {
			case events <- ev:
			case <-stdCtx.Done():
			}
		}

		var lastVersion uint64
		var lastErr error
		ctrl := view.New(h.tasks, view.Options{
			UserID: userID,
			Filter: kind,
			Logger: log,
			OnChange: func(snap view.Snapshot) {
				if snap.Version == lastVersion && (snap.Err == nil || snap.Err == lastErr) {
					return
				}
				lastVersion, lastErr = snap.Version, snap.Err
				push(sseEvent{name: "tasks", data: taskListEvent(snap)})
			},
			OnRemoteInsert: func(task domain.Task) {
				push(sseEvent{name: "assigned", id: task.ID, data: transport.AssignedEvent{
					TaskID:  task.ID,
					Title:   task.Title,
					Message: "New task assigned: " + task.Title,
				}})
			},
		})
		defer func() {
			cancel()
			if err := ctrl.Close(); err != nil {
				log.Warn("failed to close task view", zap.Error(err))
			}
		}()

		sub, err := h.subscriber.Subscribe(stdCtx, realtime.RelationTasks, realtime.Eq("assigned_to", userID))
		if err != nil {
			log.Error("failed to subscribe to task inserts", zap.Error(err))
			_ = writeEvent(w, sseEvent{name: "error", data: map[string]string{"error": "realtime unavailable"}})
			return
		}
		if err := ctrl.Watch(sub); err != nil {
			return
		}
		ctrl.RequestReload()

		h.pump(stdCtx, w, events, log)
	})
}

// @Summary Stream the caller's notifications
// @Description Emits one `notifications` snapshot, then `notification` per insert.
// @Tags notifications
// @Produce text/event-stream
// @Router /api/v1/notifications/stream [get]
func (h *StreamHandler) Notifications(ctx *fasthttp.RequestCtx) {
	userID := h.currentUser(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.streamContext(ctx)
	log := appLogger.WithRequestID(stdCtx, h.logger).With(zap.String("user_id", userID))
	prepareStream(ctx)

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		events := make(chan sseEvent, streamBuffer)
		f := feed.New(h.notifications, h.subscriber, feed.Options{
			UserID: userID,
			Limit:  h.limit,
			Logger: log,
			OnInsert: func(n domain.Notification) {
				select {
				case events <- sseEvent{name: "notification", id: n.ID, data: n}:
				case <-stdCtx.Done():
				}
			},
		})
		defer func() {
			cancel()
			if err := f.Close(); err != nil {
				log.Warn("failed to close notification feed", zap.Error(err))
			}
		}()

		if err := f.Start(stdCtx); err != nil {
			_ = writeEvent(w, sseEvent{name: "error", data: map[string]string{"error": "notifications unavailable"}})
			return
		}

		items := f.Items()
		sent := make(map[string]struct{}, len(items))
		for _, n := range items {
			sent[n.ID] = struct{}{}
		}
		if err := writeEvent(w, sseEvent{name: "notifications", data: items}); err != nil {
			return
		}

		deduped := make(chan sseEvent, streamBuffer)
		go func() {
			defer close(deduped)
			for {
				select {
				case <-stdCtx.Done():
					return
				case ev := <-events:
					if _, dup := sent[ev.id]; dup {
						continue
					}
					select {
					case deduped <- ev:
					case <-stdCtx.Done():
						return
					}
				}
			}
		}()
		h.pump(stdCtx, w, deduped, log)
	})
}

// pump writes events and heartbeats until the client goes away or events closes.
func (h *StreamHandler) pump(ctx context.Context, w *bufio.Writer, events <-chan sseEvent, log *zap.Logger) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				log.Debug("stream client gone", zap.Error(err))
				return
			}
		case <-ticker.C:
			if _, err := w.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				log.Debug("stream client gone", zap.Error(err))
				return
			}
		}
	}
}

func (h *StreamHandler) streamContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Stream(ctx)
	}
	return context.WithCancel(context.Background())
}

func prepareStream(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")
	ctx.SetStatusCode(fasthttp.StatusOK)
}

func taskListEvent(snap view.Snapshot) transport.TaskListEvent {
	ev := transport.TaskListEvent{
		Tasks:   snap.Tasks,
		Filter:  string(snap.Filter),
		Version: snap.Version,
	}
	if snap.Err != nil {
		ev.Error = "failed to load tasks"
	}
	return ev
}

func writeEvent(w *bufio.Writer, ev sseEvent) error {
	payload, err := json.Marshal(ev.data)
	if err != nil {
		return err
	}
	if ev.id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", ev.id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, payload); err != nil {
		return err
	}
	return w.Flush()
}
