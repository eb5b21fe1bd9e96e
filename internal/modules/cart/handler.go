package cart

import (
	"errors"
	"net/http"
	"strconv"

	"paypalexpress/internal/middleware"
	"paypalexpress/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// RegisterRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/cart/items")
	{
		items.GET("", h.List)
		items.POST("", h.Add)
		items.DELETE("", h.Clear)
		items.DELETE("/:id", h.Remove)
	}
}

// List godoc
// @Summary      Cart of the session customer
// @Tags         Cart
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} CartResponse
// @Router       /cart/items [get]
func (h *Handler) List(c *gin.Context) {
	cart, err := h.service.Get(c.Request.Context(), c.GetInt64(middleware.KeyStoreID), c.GetInt64(middleware.KeyCustomerID))
	if err != nil {
		h.log.Error("cart not loaded", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// Add godoc
// @Summary      Add an item to the cart
// @Tags         Cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body AddItemRequest true "Item"
// @Success      201
// @Failure      409
// @Failure      422
// @Router       /cart/items [post]
func (h *Handler) Add(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), c.GetInt64(middleware.KeyStoreID), c.GetInt64(middleware.KeyCustomerID), req)
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid cart item", verr.Fields)
	case errors.Is(err, ErrMixedRecurringCart):
		response.Error(c, http.StatusConflict, "MIXED_CART", "Recurring items must be bought alone")
	case err != nil:
		h.log.Error("cart item not added", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add item")
	default:
		response.Success(c, http.StatusCreated, item)
	}
}

// Remove godoc
// @Summary      Remove an item from the cart
// @Tags         Cart
// @Security     BearerAuth
// @Param        id path int true "Cart item ID"
// @Router       /cart/items/{id} [delete]
func (h *Handler) Remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid cart item ID")
		return
	}
	err = h.service.RemoveItem(c.Request.Context(), c.GetInt64(middleware.KeyCustomerID), id)
	if errors.Is(err, ErrItemNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Cart item not found")
		return
	}
	if err != nil {
		h.log.Error("cart item not removed", zap.Int64("item_id", id), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove item")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": id})
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         Cart
// @Security     BearerAuth
// @Router       /cart/items [delete]
func (h *Handler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), c.GetInt64(middleware.KeyStoreID), c.GetInt64(middleware.KeyCustomerID)); err != nil {
		h.log.Error("cart not cleared", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear cart")
		return
	}
	c.Status(http.StatusNoContent)
}
