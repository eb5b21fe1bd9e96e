package ipn

import (
	"context"

	"paypalexpress/internal/domain"
)

type orderStore interface {
	GetByGUID(ctx context.Context, guid string) (*domain.Order, error)
	AddNote(ctx context.Context, orderID int64, note string, displayToCustomer bool) error
	Transition(ctx context.Context, orderID int64, fn func(o *domain.Order) domain.TransitionResult) (domain.TransitionResult, *domain.Order, error)
}

type recurringStore interface {
	ListByInitialOrder(ctx context.Context, orderID int64) ([]domain.RecurringPayment, error)
	HistoryCount(ctx context.Context, recurringPaymentID int64) (int64, error)
	InsertFirstCycle(ctx context.Context, recurringPaymentID, orderID int64, txnID string) (bool, error)
	AdvanceCycle(ctx context.Context, recurringPaymentID, orderID int64, txnID string) (bool, error)
}

type deliveryLog interface {
	Record(ctx context.Context, d *domain.IPNDelivery) (bool, error)
}

type settingsProvider interface {
	Current(ctx context.Context) domain.PayPalSettings
}

type verifier interface {
	Verify(ctx context.Context, rawBody, userAgent string) (bool, Fields, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, ev Event)
}
