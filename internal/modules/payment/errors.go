package payment

import (
	"errors"
	"strings"
)

var (
	ErrOrderNotFound            = errors.New("order not found")
	ErrRecurringPaymentNotFound = errors.New("recurring payment not found")
	ErrProviderUnavailable      = errors.New("paypal is unavailable")
	ErrUnsupportedCyclePeriod   = errors.New("not supported cycle period")
)

// ProviderError is a call PayPal answered with a failure ack.
type ProviderError struct {
	Messages []string
}

func (e *ProviderError) Error() string {
	if len(e.Messages) == 0 {
		return "paypal rejected the request"
	}
	return strings.Join(e.Messages, "")
}
