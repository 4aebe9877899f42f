package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/mona/internal/scheduler"
)

// SchedulerHandler handles scheduler-related API requests.
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
}

// NewSchedulerHandler creates a new scheduler handler.
func NewSchedulerHandler(sched *scheduler.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: sched,
	}
}

// ListTasks returns all scheduled tasks.
// GET /tasks
func (h *SchedulerHandler) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.ListTasks())
}

// RunTask runs a task and waits for it to finish.
// POST /tasks/:id/run
func (h *SchedulerHandler) RunTask(c echo.Context) error {
	taskID := c.Param("id")
	if err := h.scheduler.RunNow(taskID); err != nil {
		status := http.StatusConflict
		if errors.Is(err, scheduler.ErrTaskNotFound) {
			status = http.StatusNotFound
		}
		return c.JSON(status, map[string]string{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Task completed",
		"taskId":  taskID,
	})
}
