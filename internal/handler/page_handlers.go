package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storycraft-server/internal/models"
)

func (h *Handler) createPage(c *gin.Context) {
	user, projectID, ok := h.identify(c, "project_id")
	if !ok {
		return
	}

	page, err := h.pages.CreatePage(c.Request.Context(), user, projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, page)
}

func (h *Handler) listPages(c *gin.Context) {
	user, projectID, ok := h.identify(c, "project_id")
	if !ok {
		return
	}

	var status *models.PageStatus
	if raw := c.Query("status"); raw != "" {
		s := models.PageStatus(raw)
		if !s.IsValid() {
			badRequest(c, "invalid status filter: "+raw)
			return
		}
		status = &s
	}

	pages, err := h.pages.ListPages(c.Request.Context(), user, projectID, status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pages)
}

func (h *Handler) getPage(c *gin.Context) {
	user, pageID, ok := h.identify(c, "page_id")
	if !ok {
		return
	}

	page, err := h.pages.GetPage(c.Request.Context(), user, pageID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) updatePage(c *gin.Context) {
	user, pageID, ok := h.identify(c, "page_id")
	if !ok {
		return
	}

	var upd models.PageUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	page, err := h.pages.UpdatePage(c.Request.Context(), user, pageID, upd)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) deletePage(c *gin.Context) {
	user, pageID, ok := h.identify(c, "page_id")
	if !ok {
		return
	}

	if err := h.pages.DeletePage(c.Request.Context(), user, pageID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// craftImage generates an image for the page. By default the work runs as a
// background task and the call returns 202 with a task id to poll;
// ?sync=true blocks until the image is installed. ?regenerate=true replaces
// an existing generated image.
func (h *Handler) craftImage(c *gin.Context) {
	user, pageID, ok := h.identify(c, "page_id")
	if !ok {
		return
	}
	regenerate, _ := strconv.ParseBool(c.DefaultQuery("regenerate", "false"))
	sync, _ := strconv.ParseBool(c.DefaultQuery("sync", "false"))

	if sync {
		page, err := h.pages.CraftImage(c.Request.Context(), user, pageID, regenerate)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
		return
	}

	taskID, err := h.tasks.Submit(user, func(ctx context.Context) (any, error) {
		return h.pages.CraftImage(ctx, user, pageID, regenerate)
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, models.TaskResponse{TaskID: taskID.String()})
}

func (h *Handler) craftText(c *gin.Context) {
	user, pageID, ok := h.identify(c, "page_id")
	if !ok {
		return
	}

	suggestion, err := h.pages.CraftText(c.Request.Context(), user, pageID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, craftTextResponse{Suggestion: suggestion})
}

func (h *Handler) moveToStory(c *gin.Context) {
	user, pageID, ok := h.identify(c, "page_id")
	if !ok {
		return
	}

	page, err := h.pages.MoveToStory(c.Request.Context(), user, pageID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) moveToWorkshop(c *gin.Context) {
	user, pageID, ok := h.identify(c, "page_id")
	if !ok {
		return
	}

	page, err := h.pages.MoveToWorkshop(c.Request.Context(), user, pageID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) archivePage(c *gin.Context) {
	user, pageID, ok := h.identify(c, "page_id")
	if !ok {
		return
	}

	page, err := h.pages.ArchivePage(c.Request.Context(), user, pageID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
