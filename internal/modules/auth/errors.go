package auth

import "errors"

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
)
