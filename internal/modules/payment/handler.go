package payment

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type adminService interface {
	OrderDetails(ctx context.Context, orderID int64) (*OrderDetailsResponse, error)
	Capture(ctx context.Context, orderID int64) (*domain.Order, error)
	Refund(ctx context.Context, orderID int64, amount float64) (*domain.Order, error)
	Void(ctx context.Context, orderID int64) (*domain.Order, error)
	CancelRecurringProfile(ctx context.Context, recurringPaymentID int64) (*domain.RecurringPayment, error)
}

type Handler struct {
	service adminService
	log     *zap.Logger
}

func NewHandler(service adminService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// RegisterAdminRoutes expects rg to be guarded by the admin role.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:id", h.GetOrder)
	rg.POST("/orders/:id/capture", h.Capture)
	rg.POST("/orders/:id/refund", h.Refund)
	rg.POST("/orders/:id/void", h.Void)
	rg.POST("/recurring-payments/:id/cancel", h.CancelRecurring)
}

// GetOrder godoc
// @Summary      Order payment details
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Order ID"
// @Router       /admin/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	details, err := h.service.OrderDetails(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "order details failed", id, err)
		return
	}
	response.Success(c, http.StatusOK, details)
}

// Capture godoc
// @Summary      Capture an authorized PayPal payment
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Order ID"
// @Router       /admin/orders/{id}/capture [post]
func (h *Handler) Capture(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.service.Capture(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "capture failed", id, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

// Refund godoc
// @Summary      Refund a PayPal payment in full or in part
// @Tags         Admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        body body RefundRequest false "Refund amount"
// @Router       /admin/orders/{id}/refund [post]
func (h *Handler) Refund(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RefundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}
	order, err := h.service.Refund(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.fail(c, "refund failed", id, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

// Void godoc
// @Summary      Void an authorized PayPal payment
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Order ID"
// @Router       /admin/orders/{id}/void [post]
func (h *Handler) Void(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.service.Void(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "void failed", id, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

// CancelRecurring godoc
// @Summary      Cancel a PayPal recurring payments profile
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Recurring payment ID"
// @Router       /admin/recurring-payments/{id}/cancel [post]
func (h *Handler) CancelRecurring(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rp, err := h.service.CancelRecurringProfile(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "recurring cancel failed", id, err)
		return
	}
	response.Success(c, http.StatusOK, rp)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, msg string, id int64, err error) {
	var perr *ProviderError
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrRecurringPaymentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrTransitionNotAllowed):
		response.Error(c, http.StatusConflict, "INVALID_STATUS", "Operation is not allowed in the current payment status")
	case errors.Is(err, domain.ErrInvalidRefundAmount):
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid refund amount")
	case errors.As(err, &perr):
		response.ErrorWithDetails(c, http.StatusBadGateway, "PAYPAL_ERROR", "PayPal rejected the request", perr.Messages)
	case errors.Is(err, ErrProviderUnavailable):
		h.log.Error(msg, zap.Int64("id", id), zap.Error(err))
		response.Error(c, http.StatusBadGateway, "PAYPAL_UNAVAILABLE", "PayPal is not reachable, try again later")
	default:
		h.log.Error(msg, zap.Int64("id", id), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
