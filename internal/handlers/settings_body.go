package handlers

import (
	"auction_backend/internal/logger"
	"auction_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// bindSettingsBody decodes a visibility settings body. Any well-formed JSON is accepted
// and returned as decoded, JSON-encoded strings included; the visibility package repairs it.
func (h *BaseHandler) bindSettingsBody(c *gin.Context) (interface{}, bool) {
	var body interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.CtxWithError(c.Request.Context(), "Failed to bind settings body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return nil, false
	}
	return body, true
}
