package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/paypal"
)

func testSettings() domain.PayPalSettings {
	return domain.PayPalSettings{
		APIUsername:                 "merchant",
		APIPassword:                 "pwd",
		APISignature:                "sig",
		LocaleCode:                  "US",
		PaymentAction:               domain.PaymentActionSale,
		CartBorderColor:             "FFFFFF",
		RequireConfirmedShipping:    true,
		RegenerateOrderGUIDInterval: 180,
	}
}

func TestInitiateCheckoutRedirectsToPayPal(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, shirt)

	e.api.On("SetExpressCheckout", mock.Anything, mock.Anything, mock.MatchedBy(func(r paypal.SetExpressCheckoutRequest) bool {
		return r.ReturnURL == "https://shop.example.com/Plugins/PaymentPayPalExpressCheckout/ReturnHandler" &&
			r.CancelURL == "https://shop.example.com/cart" &&
			r.ReqConfirmShipping == "1" && r.NoShipping == "1" &&
			r.LocaleCode == "US" && r.CartBorderColor == "FFFFFF" &&
			r.BuyerEmail == "buyer@example.com" &&
			r.MaxAmount == 55 &&
			r.ButtonSource == paypal.BNCode &&
			r.PaymentDetails.ItemTotal == 30 && r.PaymentDetails.PaymentAction == "Sale" &&
			len(r.PaymentDetails.Items) == 1
	})).Return(&paypal.SetExpressCheckoutResponse{
		Response: paypal.Response{Ack: paypal.AckSuccessWithWarning},
		Token:    "EC-42",
	}, nil).Once()

	target, err := e.coord.InitiateCheckout(context.Background(), e.sess, "https://shop.example.com/cart")
	require.NoError(t, err)
	assert.Equal(t, "https://www.sandbox.paypal.com/webscr?cmd=_express-checkout&token=EC-42", target)
	assert.Empty(t, e.state.TakeError(e.sess.ID))
	e.api.AssertExpectations(t)
}

func TestInitiateCheckoutFailureStagesError(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, ebook)

	e.api.On("SetExpressCheckout", mock.Anything, mock.Anything, mock.MatchedBy(func(r paypal.SetExpressCheckoutRequest) bool {
		return r.ReqConfirmShipping == "0" && r.NoShipping == "2"
	})).Return(&paypal.SetExpressCheckoutResponse{
		Response: paypal.Response{Ack: paypal.AckFailure, Errors: []paypal.APIError{{ErrorCode: "10413", LongMessage: "Totals mismatch"}}},
	}, nil).Once()

	target, err := e.coord.InitiateCheckout(context.Background(), e.sess, "https://shop.example.com/product/1")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/product/1", target)
	assert.Equal(t, msgCartSetupFailed, e.state.TakeError(e.sess.ID))

	e.api.On("SetExpressCheckout", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused")).Once()
	target, err = e.coord.InitiateCheckout(context.Background(), e.sess, "")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/cart", target)
	assert.Equal(t, msgCartSetupFailed, e.state.TakeError(e.sess.ID))
}

func TestInitiateCheckoutEmptyCart(t *testing.T) {
	e := newEnv(t, testSettings())

	_, err := e.coord.InitiateCheckout(context.Background(), e.sess, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	e.api.AssertNotCalled(t, "SetExpressCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteReturnStagesRequestAndAddresses(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, shirt)
	ctx := context.Background()
	_, err := e.shipping.SelectShippingOption(ctx, e.sess, e.cart(t), "Ground___Shipping.FixedRate")
	require.NoError(t, err)

	e.api.On("GetExpressCheckoutDetails", mock.Anything, mock.Anything, "EC-TOKEN").Return(detailsResponse(), nil).Twice()

	ok, err := e.coord.CompleteReturn(ctx, e.sess, "EC-TOKEN")
	require.NoError(t, err)
	require.True(t, ok)

	staged, found := e.state.Requests.Peek(e.sess.ID)
	require.True(t, found)
	assert.Equal(t, "EC-TOKEN", staged.Token)
	assert.Equal(t, "PAYER-1", staged.PayerID)
	assert.Equal(t, 30.0, staged.OrderTotal)
	assert.Equal(t, domain.PayPalExpressSystemName, staged.PaymentMethodSystemName)
	assert.NotNil(t, staged.OrderGUIDGeneratedAt)

	_, selected := e.shipping.Selected(e.sess)
	assert.False(t, selected, "selection is cleared on return")

	addresses, err := e.customers.Addresses(ctx, e.sess.CustomerID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, "John", addresses[0].FirstName)
	assert.Equal(t, "Jane", addresses[1].FirstName)
	assert.Equal(t, "Van Smith", addresses[1].LastName)
	assert.Equal(t, "buyer@example.com", addresses[1].Email)
	assert.Equal(t, "555-0200", addresses[1].PhoneNumber)

	customer, err := e.customers.GetByID(ctx, e.sess.CustomerID)
	require.NoError(t, err)
	require.NotNil(t, customer.BillingAddressID)
	require.NotNil(t, customer.ShippingAddressID)
	assert.Equal(t, addresses[0].ID, *customer.BillingAddressID)
	assert.Equal(t, addresses[1].ID, *customer.ShippingAddressID)

	ok, err = e.coord.CompleteReturn(ctx, e.sess, "EC-TOKEN")
	require.NoError(t, err)
	require.True(t, ok)
	addresses, err = e.customers.Addresses(ctx, e.sess.CustomerID)
	require.NoError(t, err)
	assert.Len(t, addresses, 2, "identical addresses are reused")
}

func TestCompleteReturnSkipsShippingForDownloads(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, member)

	e.api.On("GetExpressCheckoutDetails", mock.Anything, mock.Anything, "EC-TOKEN").Return(detailsResponse(), nil).Once()

	ok, err := e.coord.CompleteReturn(context.Background(), e.sess, "EC-TOKEN")
	require.NoError(t, err)
	require.True(t, ok)

	customer, err := e.customers.GetByID(context.Background(), e.sess.CustomerID)
	require.NoError(t, err)
	assert.NotNil(t, customer.BillingAddressID)
	assert.Nil(t, customer.ShippingAddressID)

	staged, _ := e.state.Requests.Peek(e.sess.ID)
	assert.True(t, staged.IsRecurring)
	assert.Equal(t, domain.CycleMonths, staged.RecurringCyclePeriod)
	assert.Equal(t, 12, staged.RecurringTotalCycles)
}

func TestCompleteReturnFailure(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, shirt)

	e.api.On("GetExpressCheckoutDetails", mock.Anything, mock.Anything, "BAD").Return(&paypal.GetExpressCheckoutDetailsResponse{
		Response: paypal.Response{Ack: paypal.AckFailure},
	}, nil).Once()
	e.api.On("GetExpressCheckoutDetails", mock.Anything, mock.Anything, "DOWN").Return(nil, paypal.ErrTimeout).Once()

	ok, err := e.coord.CompleteReturn(context.Background(), e.sess, "BAD")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.coord.CompleteReturn(context.Background(), e.sess, "DOWN")
	require.NoError(t, err)
	assert.False(t, ok)

	_, staged := e.state.Requests.Peek(e.sess.ID)
	assert.False(t, staged)
}

func TestCompleteReturnGUIDContinuity(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, ebook)
	e.api.On("GetExpressCheckoutDetails", mock.Anything, mock.Anything, mock.Anything).Return(detailsResponse(), nil)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	returnAt := func(at time.Time) domain.PendingPaymentRequest {
		e.coord.now = func() time.Time { return at }
		ok, err := e.coord.CompleteReturn(context.Background(), e.sess, "EC-TOKEN")
		require.NoError(t, err)
		require.True(t, ok)
		staged, found := e.state.Requests.Peek(e.sess.ID)
		require.True(t, found)
		return staged
	}

	first := returnAt(start)
	second := returnAt(start.Add(179 * time.Second))
	assert.Equal(t, first.OrderGUID, second.OrderGUID)
	assert.Equal(t, start, *second.OrderGUIDGeneratedAt)

	third := returnAt(start.Add(181 * time.Second))
	assert.NotEqual(t, first.OrderGUID, third.OrderGUID)
	assert.Equal(t, start.Add(181*time.Second), *third.OrderGUIDGeneratedAt)
}
