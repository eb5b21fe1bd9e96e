package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"paypalexpress/internal/pkg/jwt"

	nanoid "github.com/jaevor/go-nanoid"
)

const defaultStoreID = 1

// Service opens buyer and admin sessions. Each session gets its own id, which keys the
// checkout state kept between PayPal redirects.
type Service struct {
	customers customerStore
	tokens    tokenIssuer
	ttl       time.Duration
	adminKey  string
	newID     func() string
	now       func() time.Time
}

func NewService(customers customerStore, tokens tokenIssuer, ttl time.Duration, adminKey string) (*Service, error) {
	gen, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("session id generator: %w", err)
	}
	return &Service{
		customers: customers,
		tokens:    tokens,
		ttl:       ttl,
		adminKey:  adminKey,
		newID:     gen,
		now:       time.Now,
	}, nil
}

func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResponse, error) {
	role := jwt.RoleCustomer
	if req.AdminKey != "" {
		if s.adminKey == "" || subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(s.adminKey)) != 1 {
			return nil, ErrInvalidAdminKey
		}
		role = jwt.RoleAdmin
	}

	storeID := req.StoreID
	if storeID == 0 {
		storeID = defaultStoreID
	}
	customer, err := s.customers.FindOrCreateByEmail(ctx, storeID, req.Email)
	if err != nil {
		return nil, err
	}

	sessionID := s.newID()
	token, err := s.tokens.GenerateToken(customer.ID, storeID, role, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{
		Token:      token,
		SessionID:  sessionID,
		CustomerID: customer.ID,
		StoreID:    storeID,
		Role:       role,
		ExpiresAt:  s.now().Add(s.ttl).UTC(),
	}, nil
}
