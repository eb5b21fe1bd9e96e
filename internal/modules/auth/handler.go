package auth

import (
	"errors"
	"net/http"

	"paypalexpress/internal/middleware"
	"paypalexpress/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service      *Service
	secureCookie bool
	log          *zap.Logger
}

func NewHandler(service *Service, secureCookie bool, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, secureCookie: secureCookie, log: log}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.POST("/sessions", h.CreateSession)
}

// CreateSession godoc
// @Summary      Open a checkout session
// @Description  Finds or creates the customer by email and returns a session token. The token is also set as the paypal_session cookie so PayPal redirects stay authenticated.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request body CreateSessionRequest true "Customer email"
// @Success      201 {object} SessionResponse
// @Failure      400
// @Failure      403
// @Router       /sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req)
	if errors.Is(err, ErrInvalidAdminKey) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Invalid admin key")
		return
	}
	if err != nil {
		h.log.Error("session not created", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "SESSION_FAILED", "Failed to create session")
		return
	}

	maxAge := int(h.service.ttl.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusCreated, session)
}
