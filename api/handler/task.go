package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/internal/filter"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/repository"
	taskUC "github.com/fastygo/taskflow/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks matching a filter
// @Tags tasks
// @Param filter query string false "all|assigned_to_me|created_by_me|overdue|due_today"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.currentUser(ctx)
	if userID == "" {
		return
	}

	kind, err := filter.ParseKind(string(ctx.QueryArgs().Peek("filter")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, repository.TaskQuery{
		Filter: kind,
		UserID: userID,
		Limit:  parseInt(string(ctx.QueryArgs().Peek("limit")), 0),
		Offset: parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(tasks, map[string]interface{}{
		"filter": kind,
		"count":  len(tasks),
	}))
}

// @Summary Create a task and notify its assignee
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.currentUser(ctx)
	if userID == "" {
		return
	}

	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.invalidPayload(ctx, "invalid payload")
		return
	}
	due, err := req.Due()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, taskUC.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   userID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	meta := transport.CreatedMeta{Notified: created.Notification != nil}
	if created.NotifyErr != nil {
		meta.NotifyError = "assignee could not be notified"
	}
	h.respondJSON(ctx, http.StatusCreated, transport.NewSuccess(created.Task, meta))
}

// @Summary Set the completion flag of a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [put]
func (h *TaskHandler) ToggleComplete(ctx *fasthttp.RequestCtx) {
	if h.currentUser(ctx) == "" {
		return
	}

	var req transport.ToggleRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.IsComplete == nil {
		h.invalidPayload(ctx, "is_complete is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.ToggleComplete(stdCtx, taskID(ctx), *req.IsComplete)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Delete a task
// @Tags tasks
// @Param confirm query bool true "must be true"
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	if h.currentUser(ctx) == "" {
		return
	}

	id := taskID(ctx)
	if id == "" {
		h.invalidPayload(ctx, "missing task id")
		return
	}
	confirmed, _ := strconv.ParseBool(string(ctx.QueryArgs().Peek("confirm")))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id, confirmed); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

func taskID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

