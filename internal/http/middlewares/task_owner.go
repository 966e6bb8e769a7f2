package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskpit/taskpit/internal/config"
	"github.com/taskpit/taskpit/internal/domain/task"
)

type TaskLoader interface {
	GetByID(ctx context.Context, id string) (task.Task, error)
}

type TaskOwnerMiddleware struct {
	tasks TaskLoader
}

func NewTaskOwnerMiddleware(tasks TaskLoader) *TaskOwnerMiddleware {
	return &TaskOwnerMiddleware{tasks: tasks}
}

// RequireOwner runs after RequireAuth. It loads the task from the :id route
// param, rejects unknown ids with 404 and foreign owners with 403, and binds
// the loaded task for the downstream handler.
func (m *TaskOwnerMiddleware) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		t, err := m.tasks.GetByID(cctx, c.Param("id"))
		if err != nil {
			if errors.Is(err, task.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error": gin.H{
						"name":    "NotFound",
						"message": "Task is not found!",
					},
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"name":    "InternalError",
					"message": "Could not load task",
				},
			})
			return
		}

		if t.UserID != u.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"name":    "Forbidden",
					"message": "You're not allowed to read or write this task.",
				},
			})
			return
		}

		c.Set(ctxTaskKey, t)

		c.Next()
	}
}

// TaskFromContext returns the task bound by RequireOwner.
func TaskFromContext(c *gin.Context) (task.Task, bool) {
	v, ok := c.Get(ctxTaskKey)
	if !ok {
		return task.Task{}, false
	}
	t, ok := v.(task.Task)
	return t, ok
}
