package auth

import "time"

type CreateSessionRequest struct {
	Email    string `json:"email" binding:"required,email"`
	StoreID  int64  `json:"store_id" binding:"omitempty,gte=1"`
	AdminKey string `json:"admin_key,omitempty"`
}

type SessionResponse struct {
	Token      string    `json:"token"`
	SessionID  string    `json:"session_id"`
	CustomerID int64     `json:"customer_id"`
	StoreID    int64     `json:"store_id"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
}
