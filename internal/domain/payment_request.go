package domain

import (
	"time"

	"github.com/google/uuid"
)

// PendingPaymentRequest is the checkout snapshot staged between the PayPal return
// callback and final order placement.
type PendingPaymentRequest struct {
	CustomerID              int64      `json:"customer_id"`
	StoreID                 int64      `json:"store_id"`
	OrderGUID               uuid.UUID  `json:"order_guid"`
	OrderGUIDGeneratedAt    *time.Time `json:"order_guid_generated_at,omitempty"`
	Token                   string     `json:"token"`
	PayerID                 string     `json:"payer_id"`
	OrderTotal              float64    `json:"order_total"`
	Currency                string     `json:"currency"`
	PaymentMethodSystemName string     `json:"payment_method_system_name"`

	IsRecurring          bool        `json:"is_recurring,omitempty"`
	RecurringCycleLength int         `json:"recurring_cycle_length,omitempty"`
	RecurringCyclePeriod CyclePeriod `json:"recurring_cycle_period,omitempty"`
	RecurringTotalCycles int         `json:"recurring_total_cycles,omitempty"`
}

// InheritGUID keeps the previous correlation GUID while it is younger than interval,
// otherwise mints a fresh one. A non-positive interval always mints.
func (r *PendingPaymentRequest) InheritGUID(previous *PendingPaymentRequest, interval time.Duration, now time.Time) {
	if interval > 0 && previous != nil && previous.OrderGUIDGeneratedAt != nil {
		if now.Sub(*previous.OrderGUIDGeneratedAt) < interval {
			r.OrderGUID = previous.OrderGUID
			generated := *previous.OrderGUIDGeneratedAt
			r.OrderGUIDGeneratedAt = &generated
		}
	}

	if r.OrderGUID == uuid.Nil {
		r.OrderGUID = uuid.New()
		r.OrderGUIDGeneratedAt = &now
	}
}
