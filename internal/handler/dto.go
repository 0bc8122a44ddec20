package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storycraft-server/internal/middleware"
)

type createProjectRequest struct {
	Name          string `json:"name" binding:"required"`
	Overview      string `json:"overview"`
	GlobalContext string `json:"global_context"`
}

type craftTextResponse struct {
	Suggestion string `json:"suggestion"`
}

type repairResponse struct {
	Moved int `json:"moved"`
}

// identify resolves the acting user and the uuid path parameter of a request.
// A handled error response means the bool result is false.
func (h *Handler) identify(c *gin.Context, param string) (string, uuid.UUID, bool) {
	user, err := middleware.UserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return "", uuid.UUID{}, false
	}
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		badRequest(c, "invalid "+param)
		return "", uuid.UUID{}, false
	}
	return user, id, true
}
