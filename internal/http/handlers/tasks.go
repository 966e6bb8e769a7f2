package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskpit/taskpit/internal/config"
	"github.com/taskpit/taskpit/internal/domain/task"
	"github.com/taskpit/taskpit/internal/http/middlewares"
	"github.com/taskpit/taskpit/internal/placeholder"
)

type TasksStore interface {
	Create(ctx context.Context, ownerID string, req task.CreateTaskRequest) (task.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error)
	Update(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

type TodoFetcher interface {
	ListTodos(ctx context.Context) ([]placeholder.Todo, error)
}

type TasksHandler struct {
	repo     TasksStore
	importer TodoFetcher
}

func NewTasksHandler(repo TasksStore, importer TodoFetcher) *TasksHandler {
	return &TasksHandler{repo: repo, importer: importer}
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.repo.Create(cctx, u.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"task": t,
	})
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tasks, err := h.repo.ListByOwner(cctx, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
	})
}

// GetTask just echoes the task RequireOwner already loaded.
func (h *TasksHandler) GetTask(ctx *gin.Context) {
	t, ok := middlewares.TaskFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Task missing from request context")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"task": t,
	})
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	t, ok := middlewares.TaskFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Task missing from request context")
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, t.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not update task")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"task": updated,
	})
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	t, ok := middlewares.TaskFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Task missing from request context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, t.ID); err != nil {
		RespondInternal(ctx, "Could not delete task")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ImportTasks pulls the upstream todo list and creates one task per item,
// owned by the caller. The upstream call is the only unbounded-latency
// dependency, so it runs under the request context.
func (h *TasksHandler) ImportTasks(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	todos, err := h.importer.ListTodos(ctx.Request.Context())

	if err != nil {
		RespondUpstreamUnavailable(ctx, "Todo provider is unavailable!")
		return
	}

	cctx, cancel := config.WithTimeout(30 * time.Second)
	defer cancel()

	tasks := make([]task.Task, 0, len(todos))

	for _, todo := range todos {
		t, err := h.repo.Create(cctx, u.ID, task.CreateTaskRequest{
			Name: todo.Title,
		})

		if err != nil {
			RespondInternal(ctx, "Could not import tasks")
			return
		}

		tasks = append(tasks, t)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"tasks": tasks,
	})
}
