package ipn

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrUnexpectedStatus = errors.New("unexpected verification response status")
)
