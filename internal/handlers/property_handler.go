package handlers

import (
	"net/http"

	"auction_backend/internal/middleware"
	"auction_backend/internal/models"
	"auction_backend/internal/services"
	"auction_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	*BaseHandler
	propertyService services.PropertyService
}

func NewPropertyHandler(base *BaseHandler, propertyService services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		BaseHandler:     base,
		propertyService: propertyService,
	}
}

func (h *PropertyHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	properties := r.Group("/properties")
	properties.Use(authMW)
	{
		properties.GET("", h.ListProperties)
		properties.GET("/:propertyId", h.GetProperty)
		properties.GET("/:propertyId/bids", h.ListBids)
		properties.POST("/:propertyId/bids", middleware.RoleMiddleware(models.UserRoleBidder), h.PlaceBid)
	}

	county := properties.Group("")
	county.Use(middleware.RoleMiddleware(models.UserRoleCounty))
	{
		county.POST("", h.CreateProperty)
		county.PUT("/:propertyId/visibility", h.UpdateVisibility)
		county.POST("/:propertyId/bidders", h.LinkBidder)
		county.GET("/:propertyId/bidders", h.ListLinkedBidders)
	}
}

func (h *PropertyHandler) ListProperties(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var query dto.ListPropertiesQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	resp, err := h.propertyService.ListProperties(c.Request.Context(), h.GetDB(c), principal, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PropertyHandler) GetProperty(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.propertyService.GetProperty(c.Request.Context(), h.GetDB(c), principal, c.Param("propertyId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreatePropertyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.propertyService.CreateProperty(c.Request.Context(), h.GetDB(c), principal, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateVisibility accepts any JSON body. Non-object bodies normalize to the defaults.
func (h *PropertyHandler) UpdateVisibility(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	raw, ok := h.bindSettingsBody(c)
	if !ok {
		return
	}

	resp, err := h.propertyService.UpdateVisibility(c.Request.Context(), h.GetDB(c), principal, c.Param("propertyId"), raw)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PropertyHandler) LinkBidder(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.LinkBidderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.propertyService.LinkBidder(c.Request.Context(), h.GetDB(c), principal, c.Param("propertyId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PropertyHandler) ListLinkedBidders(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.propertyService.ListLinkedBidders(c.Request.Context(), h.GetDB(c), principal, c.Param("propertyId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bidders": resp})
}

func (h *PropertyHandler) PlaceBid(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.PlaceBidRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.propertyService.PlaceBid(c.Request.Context(), h.GetDB(c), principal, c.Param("propertyId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PropertyHandler) ListBids(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.propertyService.ListBids(c.Request.Context(), h.GetDB(c), principal, c.Param("propertyId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
