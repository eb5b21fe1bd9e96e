package middleware

import (
	"net/http"
	"strings"

	"paypalexpress/internal/pkg/jwt"
	"paypalexpress/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the session token for browser redirects, which cannot send headers.
const SessionCookie = "paypal_session"

// Context keys set by JWTAuth.
const (
	KeyCustomerID = "customer_id"
	KeyStoreID    = "store_id"
	KeySessionID  = "session_id"
	KeyRole       = "role"
)

// JWTAuth accepts a bearer token or the session cookie and exposes its claims on the context.
func JWTAuth(j *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, code, msg := bearerToken(c)
		if tokenStr == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
				tokenStr = cookie
			}
		}
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := j.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			return
		}

		c.Set(KeyCustomerID, claims.CustomerID)
		c.Set(KeyStoreID, claims.StoreID)
		c.Set(KeySessionID, claims.SessionID)
		c.Set(KeyRole, claims.Role)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (token, code, msg string) {
	h := c.GetHeader("Authorization")
	if h == "" {
		return "", "AUTH_HEADER_MISSING", "Missing Authorization header"
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
	}
	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", "INVALID_AUTH_FORMAT", "Empty token"
	}
	return token, "", ""
}

// RequireRole ensures that the authenticated session has the specified role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}
		if role != requiredRole {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(jwt.RoleAdmin)
}
