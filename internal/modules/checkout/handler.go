package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/middleware"
	"paypalexpress/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	pluginPath            = "Plugins/PaymentPayPalExpressCheckout/"
	setShippingMethodPath = pluginPath + "SetShippingMethod"
	confirmPath           = pluginPath + "Confirm"

	msgShippingNotLoaded = "Selected shipping method can't be loaded"
)

type coordinator interface {
	InitiateCheckout(ctx context.Context, sess Session, referrer string) (string, error)
	CompleteReturn(ctx context.Context, sess Session, token string) (bool, error)
}

type placer interface {
	PlaceOrder(ctx context.Context, sess Session) PlaceOrderResult
}

type Handler struct {
	coordinator  coordinator
	orchestrator placer
	shipping     *Shipping
	carts        cartStore
	state        *State
	storeURL     string
	log          *zap.Logger
}

func NewHandler(coord coordinator, orch placer, shipping *Shipping, carts cartStore, state *State, storeURL string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if !strings.HasSuffix(storeURL, "/") {
		storeURL += "/"
	}
	return &Handler{
		coordinator:  coord,
		orchestrator: orch,
		shipping:     shipping,
		carts:        carts,
		state:        state,
		storeURL:     storeURL,
		log:          log,
	}
}

// RegisterRoutes expects rg to be mounted at /Plugins/PaymentPayPalExpressCheckout behind the session middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/SubmitButton", h.SubmitButton)
	rg.POST("/SubmitButton", h.SubmitButton)
	rg.GET("/ReturnHandler", h.Return)
	rg.GET("/SetShippingMethod", h.ShippingMethods)
	rg.POST("/SetShippingMethod", h.SetShippingMethod)
	rg.GET("/Confirm", h.Confirm)
	rg.POST("/Confirm", h.PlaceOrder)
}

// SubmitButton godoc
// @Summary      Start PayPal Express Checkout for the session cart
// @Tags         Checkout
// @Security     BearerAuth
// @Success      302
// @Router       /Plugins/PaymentPayPalExpressCheckout/SubmitButton [post]
func (h *Handler) SubmitButton(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}
	target, err := h.coordinator.InitiateCheckout(c.Request.Context(), sess, c.Request.Referer())
	if errors.Is(err, ErrEmptyCart) {
		response.Redirect(c, h.storeURL+cartPath)
		return
	}
	if err != nil {
		h.log.Error("express checkout not started", zap.String("session_id", sess.ID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Checkout could not be started")
		return
	}
	response.Redirect(c, target)
}

// Return godoc
// @Summary      PayPal return callback
// @Tags         Checkout
// @Param        token query string true "Express Checkout token"
// @Success      302
// @Router       /Plugins/PaymentPayPalExpressCheckout/ReturnHandler [get]
func (h *Handler) Return(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	done, err := h.coordinator.CompleteReturn(ctx, sess, c.Query("token"))
	if err != nil {
		h.log.Error("express checkout return failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	if err != nil || !done {
		response.Redirect(c, h.storeURL+cartPath)
		return
	}

	cart, err := h.carts.List(ctx, sess.StoreID, sess.CustomerID)
	if err == nil && !cart.RequiresShipping() {
		response.Redirect(c, h.storeURL+confirmPath)
		return
	}
	response.Redirect(c, h.storeURL+setShippingMethodPath)
}

// ShippingMethods godoc
// @Summary      Shipping options for the session cart
// @Tags         Checkout
// @Produce      json
// @Success      200 {object} ShippingMethodsResponse
// @Router       /Plugins/PaymentPayPalExpressCheckout/SetShippingMethod [get]
func (h *Handler) ShippingMethods(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	cart, ok := h.cart(c, sess)
	if !ok {
		return
	}
	resp := ShippingMethodsResponse{RequiresShipping: cart.RequiresShipping(), Options: []ShippingMethodModel{}}
	if resp.RequiresShipping {
		options, err := h.shipping.ShippingOptions(ctx, sess, cart)
		if err != nil {
			h.log.Error("shipping options failed", zap.String("session_id", sess.ID), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Shipping options could not be loaded")
			return
		}
		resp.Options = options
	}
	response.Success(c, http.StatusOK, resp)
}

// SetShippingMethod godoc
// @Summary      Select a shipping option
// @Tags         Checkout
// @Accept       x-www-form-urlencoded
// @Param        shippingoption formData string true "name___computationMethod"
// @Success      302
// @Router       /Plugins/PaymentPayPalExpressCheckout/SetShippingMethod [post]
func (h *Handler) SetShippingMethod(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}
	cart, ok := h.cart(c, sess)
	if !ok {
		return
	}
	if !cart.RequiresShipping() {
		h.shipping.ClearShippingOption(sess)
		response.Redirect(c, h.storeURL+confirmPath)
		return
	}

	var req SetShippingMethodRequest
	if err := c.ShouldBind(&req); err != nil {
		h.state.Errors.Stage(sess.ID, msgShippingNotLoaded)
		response.Redirect(c, h.storeURL+setShippingMethodPath)
		return
	}
	if _, err := h.shipping.SelectShippingOption(c.Request.Context(), sess, cart, req.ShippingOption); err != nil {
		h.log.Warn("shipping option not selected", zap.String("session_id", sess.ID), zap.String("option", req.ShippingOption), zap.Error(err))
		h.state.Errors.Stage(sess.ID, msgShippingNotLoaded)
		response.Redirect(c, h.storeURL+setShippingMethodPath)
		return
	}
	response.Redirect(c, h.storeURL+confirmPath)
}

// Confirm godoc
// @Summary      Order summary before placement
// @Tags         Checkout
// @Produce      json
// @Success      200 {object} ConfirmResponse
// @Router       /Plugins/PaymentPayPalExpressCheckout/Confirm [get]
func (h *Handler) Confirm(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}
	cart, ok := h.cart(c, sess)
	if !ok {
		return
	}

	resp := ConfirmResponse{Error: h.state.TakeError(sess.ID), ItemTotal: cart.ItemTotal()}
	if staged, ok := h.state.Requests.Peek(sess.ID); ok {
		resp.Token = staged.Token
		resp.OrderGUID = staged.OrderGUID.String()
		resp.Currency = staged.Currency
	}
	if option, ok := h.shipping.Selected(sess); ok && cart.RequiresShipping() {
		resp.ShippingName = option.Name
		resp.ShippingTotal = option.Rate
	}
	resp.OrderTotal = round2(resp.ItemTotal + resp.ShippingTotal)
	response.Success(c, http.StatusOK, resp)
}

// PlaceOrder godoc
// @Summary      Place the order for the staged PayPal payment
// @Tags         Checkout
// @Produce      json
// @Success      200 {object} PlaceOrderResponse
// @Failure      422
// @Router       /Plugins/PaymentPayPalExpressCheckout/Confirm [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok {
		return
	}
	result := h.orchestrator.PlaceOrder(c.Request.Context(), sess)
	switch {
	case result.RedirectToCart:
		response.Redirect(c, h.storeURL+cartPath)
	case result.IsRedirected:
		response.Success(c, http.StatusOK, PlaceOrderResponse{Redirected: true})
	case result.CompletedOrderID != nil:
		response.Success(c, http.StatusOK, PlaceOrderResponse{OrderID: result.CompletedOrderID})
	default:
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "ORDER_NOT_PLACED", "Order could not be placed", result.Warnings)
	}
}

func (h *Handler) cart(c *gin.Context, sess Session) (domain.Cart, bool) {
	cart, err := h.carts.List(c.Request.Context(), sess.StoreID, sess.CustomerID)
	if err != nil {
		h.log.Error("cart not loaded", zap.String("session_id", sess.ID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Cart could not be loaded")
		return nil, false
	}
	return cart, true
}

func sessionFrom(c *gin.Context) (Session, bool) {
	id := c.GetString(middleware.KeySessionID)
	if id == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session required")
		return Session{}, false
	}
	return Session{
		ID:         id,
		CustomerID: c.GetInt64(middleware.KeyCustomerID),
		StoreID:    c.GetInt64(middleware.KeyStoreID),
	}, true
}
