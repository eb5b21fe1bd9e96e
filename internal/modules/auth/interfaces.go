package auth

import (
	"context"

	"paypalexpress/internal/domain"
)

type customerStore interface {
	FindOrCreateByEmail(ctx context.Context, storeID int64, email string) (*domain.Customer, error)
}

type tokenIssuer interface {
	GenerateToken(customerID, storeID int64, role, sessionID string) (string, error)
}
