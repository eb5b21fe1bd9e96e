package payment

import (
	"context"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/paypal"
)

type paypalAPI interface {
	DoExpressCheckoutPayment(ctx context.Context, env paypal.Environment, req paypal.DoExpressCheckoutPaymentRequest) (*paypal.DoExpressCheckoutPaymentResponse, error)
	DoCapture(ctx context.Context, env paypal.Environment, req paypal.DoCaptureRequest) (*paypal.DoCaptureResponse, error)
	RefundTransaction(ctx context.Context, env paypal.Environment, req paypal.RefundTransactionRequest) (*paypal.RefundTransactionResponse, error)
	DoVoid(ctx context.Context, env paypal.Environment, req paypal.DoVoidRequest) (*paypal.DoVoidResponse, error)
	CreateRecurringPaymentsProfile(ctx context.Context, env paypal.Environment, req paypal.CreateRecurringPaymentsProfileRequest) (*paypal.CreateRecurringPaymentsProfileResponse, error)
	ManageRecurringPaymentsProfileStatus(ctx context.Context, env paypal.Environment, req paypal.ManageRecurringPaymentsProfileStatusRequest) (*paypal.ManageRecurringPaymentsProfileStatusResponse, error)
}

type orderStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Notes(ctx context.Context, orderID int64) ([]domain.OrderNote, error)
	AddNote(ctx context.Context, orderID int64, note string, displayToCustomer bool) error
	Transition(ctx context.Context, orderID int64, fn func(o *domain.Order) domain.TransitionResult) (domain.TransitionResult, *domain.Order, error)
}

type recurringStore interface {
	GetByID(ctx context.Context, id int64) (*domain.RecurringPayment, error)
	ListByInitialOrder(ctx context.Context, orderID int64) ([]domain.RecurringPayment, error)
	Deactivate(ctx context.Context, recurringPaymentID int64) error
}

type settingsProvider interface {
	Current(ctx context.Context) domain.PayPalSettings
}
