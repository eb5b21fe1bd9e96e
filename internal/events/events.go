package events

import (
	"context"
	"time"
)

const (
	SourceIPN       = "ipn"
	SourceCheckout  = "checkout"
	SourceAdmin     = "admin"
	SourceRecurring = "recurring"
)

// OrderPaymentEvent is emitted after an order payment status change was persisted.
type OrderPaymentEvent struct {
	OrderID    int64     `json:"order_id"`
	OrderGUID  string    `json:"order_guid"`
	StoreID    int64     `json:"store_id"`
	CustomerID int64     `json:"customer_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Source     string    `json:"source"`
	OrderTotal float64   `json:"order_total"`
	Currency   string    `json:"currency,omitempty"`
	TxnID      string    `json:"txn_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishOrderPayment(ctx context.Context, event OrderPaymentEvent) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPayment(context.Context, OrderPaymentEvent) error { return nil }
func (NoopPublisher) Close() error                                                 { return nil }
