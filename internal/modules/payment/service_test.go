package payment

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paypalexpress/internal/database/dbtest"
	"paypalexpress/internal/domain"
	"paypalexpress/internal/events"
	"paypalexpress/internal/paypal"
	"paypalexpress/internal/repository"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) DoExpressCheckoutPayment(ctx context.Context, env paypal.Environment, req paypal.DoExpressCheckoutPaymentRequest) (*paypal.DoExpressCheckoutPaymentResponse, error) {
	args := m.Called(ctx, env, req)
	resp, _ := args.Get(0).(*paypal.DoExpressCheckoutPaymentResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) DoCapture(ctx context.Context, env paypal.Environment, req paypal.DoCaptureRequest) (*paypal.DoCaptureResponse, error) {
	args := m.Called(ctx, env, req)
	resp, _ := args.Get(0).(*paypal.DoCaptureResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) RefundTransaction(ctx context.Context, env paypal.Environment, req paypal.RefundTransactionRequest) (*paypal.RefundTransactionResponse, error) {
	args := m.Called(ctx, env, req)
	resp, _ := args.Get(0).(*paypal.RefundTransactionResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) DoVoid(ctx context.Context, env paypal.Environment, req paypal.DoVoidRequest) (*paypal.DoVoidResponse, error) {
	args := m.Called(ctx, env, req)
	resp, _ := args.Get(0).(*paypal.DoVoidResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) CreateRecurringPaymentsProfile(ctx context.Context, env paypal.Environment, req paypal.CreateRecurringPaymentsProfileRequest) (*paypal.CreateRecurringPaymentsProfileResponse, error) {
	args := m.Called(ctx, env, req)
	resp, _ := args.Get(0).(*paypal.CreateRecurringPaymentsProfileResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) ManageRecurringPaymentsProfileStatus(ctx context.Context, env paypal.Environment, req paypal.ManageRecurringPaymentsProfileStatusRequest) (*paypal.ManageRecurringPaymentsProfileStatusResponse, error) {
	args := m.Called(ctx, env, req)
	resp, _ := args.Get(0).(*paypal.ManageRecurringPaymentsProfileStatusResponse)
	return resp, args.Error(1)
}

type staticSettings struct {
	s domain.PayPalSettings
}

func (f staticSettings) Current(context.Context) domain.PayPalSettings { return f.s }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderPaymentEvent
}

func (p *recordingPublisher) PublishOrderPayment(_ context.Context, ev events.OrderPaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var okResponse = paypal.Response{Ack: paypal.AckSuccess}

type fixture struct {
	api       *mockAPI
	orders    *repository.OrderRepository
	recurring *repository.RecurringPaymentRepository
	publisher *recordingPublisher
	svc       *Service
}

func newFixture(t *testing.T, action domain.PaymentAction) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{
		api:       &mockAPI{},
		orders:    repository.NewOrderRepository(db),
		recurring: repository.NewRecurringPaymentRepository(db),
		publisher: &recordingPublisher{},
	}
	settings := staticSettings{s: domain.PayPalSettings{
		APIUsername:   "merchant",
		APIPassword:   "pwd",
		APISignature:  "sig",
		PaymentAction: action,
	}}
	f.svc = NewService(f.api, f.orders, f.recurring, settings, f.publisher, nil, nil).WithStoreName("Demo Store")
	return f
}

func (f *fixture) order(t *testing.T, status domain.PaymentStatus) *domain.Order {
	t.Helper()
	o := &domain.Order{
		OrderGUID:                  uuid.NewString(),
		StoreID:                    1,
		CustomerID:                 5,
		OrderTotal:                 40,
		Currency:                   "USD",
		PaymentStatus:              status,
		AuthorizationTransactionID: "EC-TOKEN",
		CaptureTransactionID:       "AUTH-1",
	}
	require.NoError(t, f.orders.Create(context.Background(), o))
	return o
}

func pending() domain.PendingPaymentRequest {
	return domain.PendingPaymentRequest{
		CustomerID: 5,
		StoreID:    1,
		OrderGUID:  uuid.MustParse("5b0f9e2e-6f7c-4c43-9d52-0f0a7e4a1c11"),
		Token:      "EC-TOKEN",
		PayerID:    "PAYER",
		OrderTotal: 40,
		Currency:   "USD",
	}
}

func TestProcessPaymentSale(t *testing.T) {
	f := newFixture(t, domain.PaymentActionSale)
	req := ProcessPaymentRequest{Pending: pending(), Details: paypal.PaymentDetails{OrderTotal: 40, ItemTotal: 40, Currency: "USD"}}

	f.api.On("DoExpressCheckoutPayment", mock.Anything, mock.Anything, mock.MatchedBy(func(r paypal.DoExpressCheckoutPaymentRequest) bool {
		guid := "5b0f9e2e-6f7c-4c43-9d52-0f0a7e4a1c11"
		return r.Token == "EC-TOKEN" && r.PayerID == "PAYER" && r.PaymentAction == "Sale" &&
			r.ButtonSource == paypal.BNCode && r.PaymentDetails.Custom == guid && r.PaymentDetails.InvoiceID == guid
	})).Return(&paypal.DoExpressCheckoutPaymentResponse{
		Response:    okResponse,
		PaymentInfo: []paypal.PaymentInfo{{TransactionID: "TX-1", PaymentStatus: "Completed"}},
	}, nil).Once()

	res, err := f.svc.ProcessPayment(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, domain.PaymentPaid, res.NewStatus)
	assert.Equal(t, "EC-TOKEN", res.AuthorizationTransactionID)
	assert.Equal(t, "TX-1", res.CaptureTransactionID)
	require.Len(t, res.Notes, 1)
	assert.True(t, strings.HasPrefix(res.Notes[0], "DoExpressCheckoutPaymentResponseType returned - Part 1 of 1 - "))
	f.api.AssertExpectations(t)
}

func TestProcessPaymentAuthorizationAndFailure(t *testing.T) {
	f := newFixture(t, domain.PaymentActionAuthorization)
	req := ProcessPaymentRequest{Pending: pending()}

	f.api.On("DoExpressCheckoutPayment", mock.Anything, mock.Anything, mock.Anything).Return(&paypal.DoExpressCheckoutPaymentResponse{
		Response: okResponse,
	}, nil).Once()
	res, err := f.svc.ProcessPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAuthorized, res.NewStatus)

	f.api.On("DoExpressCheckoutPayment", mock.Anything, mock.Anything, mock.Anything).Return(&paypal.DoExpressCheckoutPaymentResponse{
		Response: paypal.Response{Ack: paypal.AckFailure, Errors: []paypal.APIError{{ErrorCode: "10486", ShortMessage: "Declined", LongMessage: "Funding failed"}}},
	}, nil).Once()
	res, err = f.svc.ProcessPayment(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, domain.PaymentPending, res.NewStatus)
	assert.Equal(t, []string{"LongMessage: Funding failed\nShortMessage: Declined\nErrorCode: 10486\n"}, res.Errors)

	f.api.On("DoExpressCheckoutPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil, paypal.ErrTimeout).Once()
	_, err = f.svc.ProcessPayment(context.Background(), req)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestCreateRecurringProfile(t *testing.T) {
	f := newFixture(t, domain.PaymentActionSale)
	req := ProcessPaymentRequest{Pending: pending()}
	req.Pending.IsRecurring = true
	req.Pending.RecurringCycleLength = 1
	req.Pending.RecurringCyclePeriod = domain.CycleMonths
	req.Pending.RecurringTotalCycles = 12

	f.api.On("CreateRecurringPaymentsProfile", mock.Anything, mock.Anything, mock.MatchedBy(func(r paypal.CreateRecurringPaymentsProfileRequest) bool {
		return r.Token == "EC-TOKEN" && r.BillingPeriod == "Month" && r.BillingFrequency == 1 &&
			r.TotalBillingCycles == 12 && r.Amount == 40 && r.Currency == "USD" &&
			r.Description == "Demo Store - recurring payment" && r.ProfileReference == req.Pending.OrderGUID.String()
	})).Return(&paypal.CreateRecurringPaymentsProfileResponse{Response: okResponse, ProfileID: "I-1"}, nil).Once()

	res, err := f.svc.CreateRecurringProfile(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, domain.PaymentPending, res.NewStatus)

	req.Pending.RecurringCyclePeriod = "hours"
	_, err = f.svc.CreateRecurringProfile(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnsupportedCyclePeriod)
	f.api.AssertExpectations(t)
}

func TestCapture(t *testing.T) {
	f := newFixture(t, domain.PaymentActionAuthorization)
	ctx := context.Background()
	o := f.order(t, domain.PaymentAuthorized)

	f.api.On("DoCapture", mock.Anything, mock.Anything, paypal.DoCaptureRequest{
		AuthorizationID: "AUTH-1",
		Amount:          40,
		Currency:        "USD",
		CompleteType:    "Complete",
		InvoiceID:       o.OrderGUID,
		MsgSubID:        itoa(o.ID) + "-capture",
	}).Return(&paypal.DoCaptureResponse{Response: okResponse, TransactionID: "CAP-1"}, nil).Once()

	updated, err := f.svc.Capture(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, "CAP-1", updated.CaptureTransactionID)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.SourceAdmin, f.publisher.events[0].Source)

	notes, err := f.orders.Notes(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Note, "DoCaptureResponseType returned - Part 1 of 1 - ")

	_, err = f.svc.Capture(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrTransitionNotAllowed)
	f.api.AssertExpectations(t)
}

func TestCaptureRejectedByPayPal(t *testing.T) {
	f := newFixture(t, domain.PaymentActionAuthorization)
	o := f.order(t, domain.PaymentAuthorized)

	f.api.On("DoCapture", mock.Anything, mock.Anything, mock.Anything).Return(&paypal.DoCaptureResponse{
		Response: paypal.Response{Ack: paypal.AckFailure, Errors: []paypal.APIError{{ErrorCode: "10602", LongMessage: "Authorization has already been completed"}}},
	}, nil).Once()

	_, err := f.svc.Capture(context.Background(), o.ID)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Messages[0], "ErrorCode: 10602")

	stored, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAuthorized, stored.PaymentStatus)
	assert.Empty(t, f.publisher.events)
}

func TestRefundPartialThenFull(t *testing.T) {
	f := newFixture(t, domain.PaymentActionSale)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPaid)

	f.api.On("RefundTransaction", mock.Anything, mock.Anything, paypal.RefundTransactionRequest{
		TransactionID: "AUTH-1",
		RefundType:    "Partial",
		Amount:        10,
		Currency:      "USD",
		MsgSubID:      itoa(o.ID) + "-True-10.00",
	}).Return(&paypal.RefundTransactionResponse{Response: okResponse, RefundTransactionID: "R-1"}, nil).Once()
	f.api.On("RefundTransaction", mock.Anything, mock.Anything, paypal.RefundTransactionRequest{
		TransactionID: "AUTH-1",
		RefundType:    "Full",
		Amount:        30,
		Currency:      "USD",
		MsgSubID:      itoa(o.ID) + "-False-30.00",
	}).Return(&paypal.RefundTransactionResponse{Response: okResponse, RefundTransactionID: "R-2"}, nil).Once()

	updated, err := f.svc.Refund(ctx, o.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartiallyRefunded, updated.PaymentStatus)
	assert.Equal(t, 10.0, updated.RefundedAmount)

	_, err = f.svc.Refund(ctx, o.ID, 31)
	assert.ErrorIs(t, err, domain.ErrInvalidRefundAmount)

	updated, err = f.svc.Refund(ctx, o.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, updated.PaymentStatus)
	assert.Len(t, f.publisher.events, 2)
	f.api.AssertExpectations(t)
}

func TestVoidFallsBackToAuthorizationID(t *testing.T) {
	f := newFixture(t, domain.PaymentActionAuthorization)
	ctx := context.Background()
	o := &domain.Order{OrderGUID: uuid.NewString(), OrderTotal: 15, PaymentStatus: domain.PaymentAuthorized, AuthorizationTransactionID: "EC-9"}
	require.NoError(t, f.orders.Create(ctx, o))

	f.api.On("DoVoid", mock.Anything, mock.Anything, paypal.DoVoidRequest{
		AuthorizationID: "EC-9",
		MsgSubID:        itoa(o.ID) + "-void",
	}).Return(&paypal.DoVoidResponse{Response: okResponse}, nil).Once()

	updated, err := f.svc.Void(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentVoided, updated.PaymentStatus)

	_, err = f.svc.Void(ctx, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	f.api.AssertExpectations(t)
}

func TestCancelRecurringProfile(t *testing.T) {
	f := newFixture(t, domain.PaymentActionSale)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPaid)
	rp := &domain.RecurringPayment{InitialOrderID: o.ID, CycleLength: 1, CyclePeriod: domain.CycleMonths, TotalCycles: 3, IsActive: true}
	require.NoError(t, f.recurring.Create(ctx, rp))

	f.api.On("ManageRecurringPaymentsProfileStatus", mock.Anything, mock.Anything, paypal.ManageRecurringPaymentsProfileStatusRequest{
		ProfileID: o.OrderGUID,
		Action:    "Cancel",
	}).Return(&paypal.ManageRecurringPaymentsProfileStatusResponse{Response: okResponse}, nil).Once()

	cancelled, err := f.svc.CancelRecurringProfile(ctx, rp.ID)
	require.NoError(t, err)
	assert.False(t, cancelled.IsActive)

	_, err = f.svc.CancelRecurringProfile(ctx, 777)
	assert.ErrorIs(t, err, ErrRecurringPaymentNotFound)
	f.api.AssertExpectations(t)
}

func TestProviderUnavailable(t *testing.T) {
	f := newFixture(t, domain.PaymentActionAuthorization)
	o := f.order(t, domain.PaymentAuthorized)
	f.api.On("DoVoid", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	_, err := f.svc.Void(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestResponseNotesChunks(t *testing.T) {
	notes := ResponseNotes("DoVoidResponseType", strings.Repeat("x", 5000))

	require.Len(t, notes, 2)
	assert.True(t, strings.HasPrefix(notes[0], "DoVoidResponseType returned - Part 1 of 2 - \"xxx"))
	assert.True(t, strings.HasPrefix(notes[1], "DoVoidResponseType returned - Part 2 of 2 - "))
	body := strings.TrimPrefix(notes[0], "DoVoidResponseType returned - Part 1 of 2 - ")
	assert.Len(t, body, noteChunkSize)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
