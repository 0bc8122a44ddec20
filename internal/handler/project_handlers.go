package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storycraft-server/internal/middleware"
	"storycraft-server/internal/models"
)

func (h *Handler) createProject(c *gin.Context) {
	user, err := middleware.UserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), user, req.Name, req.Overview, req.GlobalContext)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) listProjects(c *gin.Context) {
	user, err := middleware.UserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	projects, err := h.projects.ListProjects(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) getProject(c *gin.Context) {
	user, projectID, ok := h.identify(c, "project_id")
	if !ok {
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), user, projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) updateProject(c *gin.Context) {
	user, projectID, ok := h.identify(c, "project_id")
	if !ok {
		return
	}

	var upd models.ProjectUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), user, projectID, upd)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) deleteProject(c *gin.Context) {
	user, projectID, ok := h.identify(c, "project_id")
	if !ok {
		return
	}

	if err := h.projects.DeleteProject(c.Request.Context(), user, projectID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) repairProject(c *gin.Context) {
	user, projectID, ok := h.identify(c, "project_id")
	if !ok {
		return
	}

	moved, err := h.pages.RepairProject(c.Request.Context(), user, projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, repairResponse{Moved: moved})
}
