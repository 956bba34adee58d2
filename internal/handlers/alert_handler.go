package handlers

import (
	"net/http"

	"auction_backend/internal/middleware"
	"auction_backend/internal/models"
	"auction_backend/internal/services"
	"auction_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	*BaseHandler
	alertService services.AlertService
}

func NewAlertHandler(base *BaseHandler, alertService services.AlertService) *AlertHandler {
	return &AlertHandler{
		BaseHandler:  base,
		alertService: alertService,
	}
}

// RegisterRoutes mounts the alert routes. The role check runs before body validation so
// that a bidder always gets 403, whatever they send.
func (h *AlertHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	alerts := r.Group("/properties/:propertyId/alerts")
	alerts.Use(authMW, middleware.RoleMiddleware(models.UserRoleCounty))
	{
		alerts.POST("", h.SendAlert)
		alerts.GET("", h.ListAlerts)
	}
}

func (h *AlertHandler) SendAlert(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SendAlertRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.alertService.SendAlert(c.Request.Context(), h.GetDB(c), principal, c.Param("propertyId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.alertService.ListAlerts(c.Request.Context(), h.GetDB(c), principal, c.Param("propertyId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": resp})
}
