package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storycraft-server/internal/middleware"
	"storycraft-server/internal/service"
	"storycraft-server/internal/taskmanager"
)

// Handler wires the HTTP API to the services.
type Handler struct {
	projects *service.ProjectService
	pages    *service.PageService
	tasks    *taskmanager.Manager
	logger   *zap.Logger
}

func NewHandler(projects *service.ProjectService, pages *service.PageService, tasks *taskmanager.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		projects: projects,
		pages:    pages,
		tasks:    tasks,
		logger:   logger.Named("Handler"),
	}
}

// RegisterRoutes mounts the API under /api, protected by JWT auth.
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.JWTAuth(jwtSecret, h.logger))
	{
		projects := api.Group("/projects")
		{
			projects.POST("", h.createProject)
			projects.GET("", h.listProjects)
			projects.GET("/:project_id", h.getProject)
			projects.PATCH("/:project_id", h.updateProject)
			projects.DELETE("/:project_id", h.deleteProject)

			projects.POST("/:project_id/pages", h.createPage)
			projects.GET("/:project_id/pages", h.listPages)
			projects.POST("/:project_id/repair", h.repairProject)
		}

		pages := api.Group("/pages")
		{
			pages.GET("/:page_id", h.getPage)
			pages.PATCH("/:page_id", h.updatePage)
			pages.DELETE("/:page_id", h.deletePage)

			pages.POST("/:page_id/craft/image", h.craftImage)
			pages.POST("/:page_id/craft/text", h.craftText)

			pages.POST("/:page_id/story", h.moveToStory)
			pages.DELETE("/:page_id/story", h.moveToWorkshop)
			pages.POST("/:page_id/archive", h.archivePage)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("/:task_id", h.getTask)
			tasks.DELETE("/:task_id", h.cancelTask)
		}
	}
}
