package settings

import (
	"errors"
	"net/http"

	"paypalexpress/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/paypal/settings", h.Get)
	rg.PUT("/paypal/settings", h.Update)
	rg.GET("/paypal/options", h.Options)
}

func (h *Handler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, toResponse(h.service.Current(c.Request.Context())))
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	updated, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Settings are not valid", verr)
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save settings")
		return
	}
	response.Success(c, http.StatusOK, toResponse(*updated))
}

func (h *Handler) Options(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Options(c.Request.Context()))
}
