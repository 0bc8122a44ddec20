package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getTask(c *gin.Context) {
	user, taskID, ok := h.identify(c, "task_id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(user, taskID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) cancelTask(c *gin.Context) {
	user, taskID, ok := h.identify(c, "task_id")
	if !ok {
		return
	}

	if err := h.tasks.Cancel(user, taskID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
