package ipn

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	gateway    verifier
	reconciler reconciler
	log        *zap.Logger
}

func NewHandler(gateway verifier, reconciler reconciler, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{gateway: gateway, reconciler: reconciler, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/ipn-handler", h.Handle)
	r.POST("/Plugins/PaymentPayPalExpressCheckout/IPNHandler", h.Handle)
}

// Handle always answers 200 with an empty body so PayPal stops retrying;
// the outcome is only visible in logs and order state.
func (h *Handler) Handle(c *gin.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("PayPal IPN handler panic", zap.Any("panic", rec))
			c.Status(http.StatusOK)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.log.Error("PayPal IPN. Body not read", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}
	raw := string(body)
	ctx := c.Request.Context()

	verified, fields, err := h.gateway.Verify(ctx, raw, c.Request.UserAgent())
	if err != nil {
		h.log.Warn("PayPal IPN. Verification request failed", zap.Error(err))
	}

	h.reconciler.Reconcile(ctx, Event{RawBody: raw, Fields: fields, Verified: verified})
	c.Status(http.StatusOK)
}
