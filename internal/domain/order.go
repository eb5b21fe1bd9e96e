package domain

import (
	"errors"
	"time"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentAuthorized        PaymentStatus = "authorized"
	PaymentPaid              PaymentStatus = "paid"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentVoided            PaymentStatus = "voided"
)

// Label is the human readable status used in order notes.
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentAuthorized:
		return "Authorized"
	case PaymentPaid:
		return "Paid"
	case PaymentPartiallyRefunded:
		return "PartiallyRefunded"
	case PaymentRefunded:
		return "Refunded"
	case PaymentVoided:
		return "Voided"
	default:
		return "Pending"
	}
}

var (
	ErrTransitionNotAllowed = errors.New("payment status transition not allowed")
	ErrInvalidRefundAmount  = errors.New("invalid refund amount")
)

const PayPalExpressSystemName = "Payments.PayPalExpressCheckout"

type Order struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	OrderGUID  string `json:"order_guid" gorm:"type:varchar(36);uniqueIndex;not null"`
	StoreID    int64  `json:"store_id" gorm:"index"`
	CustomerID int64  `json:"customer_id" gorm:"index"`

	OrderTotal     float64 `json:"order_total"`
	RefundedAmount float64 `json:"refunded_amount"`
	Currency       string  `json:"currency" gorm:"type:varchar(3);default:'USD'"`

	PaymentStatus           PaymentStatus `json:"payment_status" gorm:"type:varchar(32);default:'pending';index"`
	PaymentMethodSystemName string        `json:"payment_method_system_name" gorm:"type:varchar(100)"`

	AuthorizationTransactionID string `json:"authorization_transaction_id,omitempty" gorm:"type:varchar(64)"`
	CaptureTransactionID       string `json:"capture_transaction_id,omitempty" gorm:"type:varchar(64)"`

	BillingAddressID  *int64 `json:"billing_address_id,omitempty"`
	ShippingAddressID *int64 `json:"shipping_address_id,omitempty"`

	ShippingMethod                string  `json:"shipping_method,omitempty" gorm:"type:varchar(255)"`
	ShippingRateComputationMethod string  `json:"shipping_rate_computation_method,omitempty" gorm:"type:varchar(255)"`
	ShippingTotal                 float64 `json:"shipping_total"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt time.Time  `json:"updated_at"`

	Notes []OrderNote `json:"notes,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// TransitionResult describes the outcome of a single payment event applied to an order.
type TransitionResult struct {
	From    PaymentStatus
	To      PaymentStatus
	Applied bool
	Err     error
}

func rejected(from PaymentStatus, err error) TransitionResult {
	return TransitionResult{From: from, To: from, Err: err}
}

func (o *Order) move(to PaymentStatus) TransitionResult {
	from := o.status()
	o.PaymentStatus = to
	return TransitionResult{From: from, To: to, Applied: true}
}

func (o *Order) status() PaymentStatus {
	if o.PaymentStatus == "" {
		return PaymentPending
	}
	return o.PaymentStatus
}

func (o *Order) CanMarkAuthorized() bool {
	return o.status() == PaymentPending
}

func (o *Order) CanMarkPaid() bool {
	s := o.status()
	return s == PaymentPending || s == PaymentAuthorized
}

func (o *Order) CanRefundOffline() bool {
	s := o.status()
	return s == PaymentPaid || s == PaymentPartiallyRefunded
}

func (o *Order) CanPartiallyRefund(amount float64) bool {
	if !o.CanRefundOffline() {
		return false
	}
	return amount > 0 && amount <= o.RemainingRefundable()
}

func (o *Order) CanVoidOffline() bool {
	return o.status() == PaymentAuthorized
}

func (o *Order) RemainingRefundable() float64 {
	return roundCents(o.OrderTotal - o.RefundedAmount)
}

func (o *Order) MarkAuthorized() TransitionResult {
	if !o.CanMarkAuthorized() {
		return rejected(o.status(), ErrTransitionNotAllowed)
	}
	return o.move(PaymentAuthorized)
}

func (o *Order) MarkPaid(at time.Time) TransitionResult {
	if !o.CanMarkPaid() {
		return rejected(o.status(), ErrTransitionNotAllowed)
	}
	o.PaidAt = &at
	return o.move(PaymentPaid)
}

func (o *Order) RefundOffline() TransitionResult {
	if !o.CanRefundOffline() {
		return rejected(o.status(), ErrTransitionNotAllowed)
	}
	o.RefundedAmount = o.OrderTotal
	return o.move(PaymentRefunded)
}

func (o *Order) PartialRefund(amount float64) TransitionResult {
	if !o.CanRefundOffline() {
		return rejected(o.status(), ErrTransitionNotAllowed)
	}
	amount = roundCents(amount)
	if amount <= 0 || amount > o.RemainingRefundable() {
		return rejected(o.status(), ErrInvalidRefundAmount)
	}
	o.RefundedAmount = roundCents(o.RefundedAmount + amount)
	if o.RemainingRefundable() <= 0 {
		return o.move(PaymentRefunded)
	}
	return o.move(PaymentPartiallyRefunded)
}

func (o *Order) VoidOffline() TransitionResult {
	if !o.CanVoidOffline() {
		return rejected(o.status(), ErrTransitionNotAllowed)
	}
	return o.move(PaymentVoided)
}

// ApplyStatus drives the order toward target through the matching guarded transition.
// Pending never changes state.
func (o *Order) ApplyStatus(target PaymentStatus, at time.Time) TransitionResult {
	switch target {
	case PaymentAuthorized:
		return o.MarkAuthorized()
	case PaymentPaid:
		return o.MarkPaid(at)
	case PaymentRefunded:
		return o.RefundOffline()
	case PaymentVoided:
		return o.VoidOffline()
	default:
		return TransitionResult{From: o.status(), To: o.status()}
	}
}

func roundCents(v float64) float64 {
	if v < 0 {
		return -roundCents(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}

type OrderNote struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	OrderID           int64     `json:"order_id" gorm:"index;not null"`
	Note              string    `json:"note" gorm:"type:text"`
	DisplayToCustomer bool      `json:"display_to_customer"`
	CreatedAt         time.Time `json:"created_at"`
}

func (OrderNote) TableName() string { return "order_notes" }
