package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paypalexpress/internal/database/dbtest"
	"paypalexpress/internal/middleware"
	"paypalexpress/internal/pkg/jwt"
	"paypalexpress/internal/repository"
)

func newService(t *testing.T, adminKey string) (*Service, *jwt.Service) {
	t.Helper()
	db := dbtest.Open(t)
	tokens := jwt.New("secret", time.Hour)
	svc, err := NewService(repository.NewCustomerRepository(db), tokens, time.Hour, adminKey)
	require.NoError(t, err)
	return svc, tokens
}

func TestCreateSessionForCustomer(t *testing.T) {
	svc, tokens := newService(t, "")
	ctx := context.Background()

	first, err := svc.CreateSession(ctx, CreateSessionRequest{Email: "Buyer@Example.com"})
	require.NoError(t, err)
	second, err := svc.CreateSession(ctx, CreateSessionRequest{Email: "buyer@example.com"})
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.NotEqual(t, first.SessionID, second.SessionID, "every session gets its own id")
	assert.Equal(t, int64(defaultStoreID), first.StoreID)

	claims, err := tokens.ValidateToken(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, claims.SessionID)
	assert.Equal(t, jwt.RoleCustomer, claims.Role)
}

func TestCreateSessionAdminKey(t *testing.T) {
	svc, _ := newService(t, "s3cret")

	s, err := svc.CreateSession(context.Background(), CreateSessionRequest{Email: "ops@example.com", AdminKey: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleAdmin, s.Role)

	_, err = svc.CreateSession(context.Background(), CreateSessionRequest{Email: "ops@example.com", AdminKey: "guess"})
	assert.ErrorIs(t, err, ErrInvalidAdminKey)

	noKey, _ := newService(t, "")
	_, err = noKey.CreateSession(context.Background(), CreateSessionRequest{Email: "ops@example.com", AdminKey: "anything"})
	assert.ErrorIs(t, err, ErrInvalidAdminKey)
}

func TestCreateSessionHandlerSetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newService(t, "")
	r := gin.New()
	NewHandler(svc, false, nil).RegisterPublicRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"email":"buyer@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Data SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.Token)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookie+"="+body.Data.Token)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
