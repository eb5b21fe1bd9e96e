package ipn

import (
	"strings"

	"paypalexpress/internal/domain"
)

// MapStatus translates PayPal's payment_status and pending_reason into an order status.
func MapStatus(paymentStatus, pendingReason string) domain.PaymentStatus {
	switch status := strings.ToLower(strings.TrimSpace(paymentStatus)); status {
	case "pending":
		if strings.EqualFold(strings.TrimSpace(pendingReason), "authorization") {
			return domain.PaymentAuthorized
		}
		return domain.PaymentPending
	case "processed", "completed", "canceled_reversal":
		return domain.PaymentPaid
	case "denied", "expired", "failed", "voided":
		return domain.PaymentVoided
	case "refunded", "reversed":
		return domain.PaymentRefunded
	default:
		return domain.PaymentPending
	}
}
