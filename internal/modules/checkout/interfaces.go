package checkout

import (
	"context"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/modules/payment"
	"paypalexpress/internal/paypal"
)

type expressCheckoutAPI interface {
	SetExpressCheckout(ctx context.Context, env paypal.Environment, req paypal.SetExpressCheckoutRequest) (*paypal.SetExpressCheckoutResponse, error)
	GetExpressCheckoutDetails(ctx context.Context, env paypal.Environment, token string) (*paypal.GetExpressCheckoutDetailsResponse, error)
}

type paymentProcessor interface {
	ProcessPayment(ctx context.Context, req payment.ProcessPaymentRequest) (*payment.ProcessPaymentResult, error)
	CreateRecurringProfile(ctx context.Context, req payment.ProcessPaymentRequest) (*payment.ProcessPaymentResult, error)
}

type cartStore interface {
	List(ctx context.Context, storeID, customerID int64) (domain.Cart, error)
	Clear(ctx context.Context, storeID, customerID int64) error
}

type customerStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Addresses(ctx context.Context, customerID int64) ([]domain.Address, error)
	CreateAddress(ctx context.Context, a *domain.Address) error
	SetBillingAddress(ctx context.Context, customerID, addressID int64) error
	SetShippingAddress(ctx context.Context, customerID, addressID int64) error
}

type orderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByGUID(ctx context.Context, guid string) (*domain.Order, error)
	LatestByCustomer(ctx context.Context, storeID, customerID int64) (*domain.Order, error)
	AddNote(ctx context.Context, orderID int64, note string, displayToCustomer bool) error
}

type recurringStore interface {
	Create(ctx context.Context, rp *domain.RecurringPayment) error
}

type settingsProvider interface {
	Current(ctx context.Context) domain.PayPalSettings
}

// RateProvider computes the shipping options available for a cart.
type RateProvider interface {
	ShippingOptions(ctx context.Context, cart domain.Cart) ([]domain.ShippingOption, error)
}

type orderPipeline interface {
	PlaceOrder(ctx context.Context, sess Session, req domain.PendingPaymentRequest) (*PipelineResult, error)
}

// PostProcessor runs after an order is placed. It reports whether the buyer was redirected.
type PostProcessor interface {
	PostProcess(ctx context.Context, order *domain.Order) (bool, error)
}
