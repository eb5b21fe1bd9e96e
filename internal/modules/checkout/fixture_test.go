package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paypalexpress/internal/config"
	"paypalexpress/internal/database/dbtest"
	"paypalexpress/internal/domain"
	"paypalexpress/internal/paypal"
	"paypalexpress/internal/repository"
)

type mockCheckoutAPI struct {
	mock.Mock
}

func (m *mockCheckoutAPI) SetExpressCheckout(ctx context.Context, env paypal.Environment, req paypal.SetExpressCheckoutRequest) (*paypal.SetExpressCheckoutResponse, error) {
	args := m.Called(ctx, env, req)
	resp, _ := args.Get(0).(*paypal.SetExpressCheckoutResponse)
	return resp, args.Error(1)
}

func (m *mockCheckoutAPI) GetExpressCheckoutDetails(ctx context.Context, env paypal.Environment, token string) (*paypal.GetExpressCheckoutDetailsResponse, error) {
	args := m.Called(ctx, env, token)
	resp, _ := args.Get(0).(*paypal.GetExpressCheckoutDetailsResponse)
	return resp, args.Error(1)
}

type staticSettings struct {
	s domain.PayPalSettings
}

func (f staticSettings) Current(context.Context) domain.PayPalSettings { return f.s }

var testRates = []config.ShippingRate{{Name: "Ground", Rate: 5}, {Name: "Next Day Air", Rate: 25}}

type env struct {
	carts     *repository.CartRepository
	customers *repository.CustomerRepository
	orders    *repository.OrderRepository
	recurring *repository.RecurringPaymentRepository
	state     *State
	shipping  *Shipping
	api       *mockCheckoutAPI
	coord     *Coordinator
	sess      Session
}

func newEnv(t *testing.T, settings domain.PayPalSettings) *env {
	t.Helper()
	db := dbtest.Open(t)
	e := &env{
		carts:     repository.NewCartRepository(db),
		customers: repository.NewCustomerRepository(db),
		orders:    repository.NewOrderRepository(db),
		recurring: repository.NewRecurringPaymentRepository(db),
		state:     NewState(time.Hour),
		api:       &mockCheckoutAPI{},
	}
	e.shipping = NewShipping(NewFixedRateProvider(testRates), e.state)
	e.coord = NewCoordinator(e.api, e.carts, e.customers, staticSettings{s: settings}, e.shipping, e.state, "https://shop.example.com", "USD", nil)

	customer, err := e.customers.FindOrCreateByEmail(context.Background(), 1, "buyer@example.com")
	require.NoError(t, err)
	e.sess = Session{ID: "sess-1", CustomerID: customer.ID, StoreID: 1}
	return e
}

func (e *env) addItem(t *testing.T, item domain.CartItem) {
	t.Helper()
	item.CustomerID = e.sess.CustomerID
	item.StoreID = e.sess.StoreID
	require.NoError(t, e.carts.Add(context.Background(), &item))
}

func (e *env) cart(t *testing.T) domain.Cart {
	t.Helper()
	cart, err := e.carts.List(context.Background(), e.sess.StoreID, e.sess.CustomerID)
	require.NoError(t, err)
	return cart
}

var (
	shirt  = domain.CartItem{SKU: "TS-1", Name: "T-Shirt", Quantity: 2, UnitPrice: 15}
	ebook  = domain.CartItem{SKU: "EB-1", Name: "E-Book", Quantity: 1, UnitPrice: 9.99, IsDownload: true}
	member = domain.CartItem{
		SKU: "SUB-1", Name: "Membership", Quantity: 1, UnitPrice: 10, IsDownload: true,
		IsRecurring: true, RecurringCycleLength: 1, RecurringCyclePeriod: domain.CycleMonths, RecurringTotalCycles: 12,
	}
)

func detailsResponse() *paypal.GetExpressCheckoutDetailsResponse {
	return &paypal.GetExpressCheckoutDetailsResponse{
		Response: paypal.Response{Ack: paypal.AckSuccess},
		Token:    "EC-TOKEN",
		PayerInfo: paypal.PayerInfo{
			PayerID:      "PAYER-1",
			Email:        "buyer@example.com",
			FirstName:    "John",
			LastName:     "Smith",
			ContactPhone: "555-0100",
			Address: paypal.Address{
				Street1:     "1 Main St",
				City:        "San Jose",
				State:       "CA",
				PostalCode:  "95131",
				CountryCode: "US",
			},
		},
		ShipTo: paypal.Address{
			Name:        "Jane Van Smith",
			Street1:     "2 Side St",
			City:        "Austin",
			State:       "TX",
			PostalCode:  "73301",
			CountryCode: "US",
			Phone:       "555-0200",
		},
	}
}
