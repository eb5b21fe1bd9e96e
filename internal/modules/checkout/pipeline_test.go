package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/modules/payment"
)

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) ProcessPayment(ctx context.Context, req payment.ProcessPaymentRequest) (*payment.ProcessPaymentResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*payment.ProcessPaymentResult)
	return res, args.Error(1)
}

func (m *mockPayments) CreateRecurringProfile(ctx context.Context, req payment.ProcessPaymentRequest) (*payment.ProcessPaymentResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*payment.ProcessPaymentResult)
	return res, args.Error(1)
}

type brokenCustomers struct {
	customerStore
}

func (brokenCustomers) GetByID(context.Context, int64) (*domain.Customer, error) {
	return nil, errors.New("connection reset")
}

func (e *env) pipeline(customers customerStore, payments paymentProcessor) *Pipeline {
	return NewPipeline(e.carts, customers, e.orders, e.recurring, payments, e.shipping, nil, nil, nil)
}

func pendingFor(e *env) domain.PendingPaymentRequest {
	return domain.PendingPaymentRequest{
		OrderGUID:  uuid.New(),
		StoreID:    e.sess.StoreID,
		CustomerID: e.sess.CustomerID,
		Token:      "EC-TOKEN",
		PayerID:    "PAYER-1",
		Currency:   "USD",
	}
}

func TestPipelineCustomerFailureDoesNotCharge(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, ebook)
	payments := &mockPayments{}

	_, err := e.pipeline(brokenCustomers{customerStore: e.customers}, payments).
		PlaceOrder(context.Background(), e.sess, pendingFor(e))
	require.Error(t, err)
	payments.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything)
	assert.Len(t, e.cart(t), 1)
}

func TestPipelineExistingGUIDDoesNotCharge(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, ebook)
	req := pendingFor(e)
	e.placed(t, req.OrderGUID)
	payments := &mockPayments{}

	_, err := e.pipeline(e.customers, payments).PlaceOrder(context.Background(), e.sess, req)
	assert.ErrorIs(t, err, ErrOrderAlreadyPlaced)
	payments.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything)
}

func TestPipelineCreatesPaidOrder(t *testing.T) {
	e := newEnv(t, testSettings())
	e.addItem(t, ebook)
	payments := &mockPayments{}
	payments.On("ProcessPayment", mock.Anything, mock.Anything).
		Return(&payment.ProcessPaymentResult{NewStatus: domain.PaymentPaid, CaptureTransactionID: "TXN-1"}, nil).Once()

	res, err := e.pipeline(e.customers, payments).PlaceOrder(context.Background(), e.sess, pendingFor(e))
	require.NoError(t, err)
	require.True(t, res.Success())
	assert.Equal(t, domain.PaymentPaid, res.Order.PaymentStatus)
	assert.Equal(t, 9.99, res.Order.OrderTotal)
	assert.NotNil(t, res.Order.PaidAt)
	assert.Empty(t, e.cart(t))
}
