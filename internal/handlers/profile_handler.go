package handlers

import (
	"net/http"

	"auction_backend/internal/services"
	"auction_backend/internal/visibility"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	profile := r.Group("/profile")
	profile.Use(authMW)
	{
		profile.GET("/visibility", h.GetVisibilityPreferences)
		profile.PATCH("/visibility", h.UpdateVisibilityPreferences)
	}
}

func (h *ProfileHandler) GetVisibilityPreferences(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.profileService.GetVisibilityPreferences(c.Request.Context(), h.GetDB(c), principal)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateVisibilityPreferences applies a partial update; absent keys keep their value.
func (h *ProfileHandler) UpdateVisibilityPreferences(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	body, ok := h.bindSettingsBody(c)
	if !ok {
		return
	}

	resp, err := h.profileService.UpdateVisibilityPreferences(c.Request.Context(), h.GetDB(c), principal, visibility.ObjectOf(body))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
