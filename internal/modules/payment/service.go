package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/events"
	"paypalexpress/internal/metrics"
	"paypalexpress/internal/paypal"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProcessPaymentRequest carries a staged checkout and the amounts to charge.
type ProcessPaymentRequest struct {
	Pending domain.PendingPaymentRequest
	Details paypal.PaymentDetails
}

type ProcessPaymentResult struct {
	NewStatus                  domain.PaymentStatus
	AuthorizationTransactionID string
	CaptureTransactionID       string
	// Errors are the provider errors of a rejected call.
	Errors []string
	// Notes hold the provider response, to be attached once the order exists.
	Notes []string
}

func (r *ProcessPaymentResult) Success() bool { return len(r.Errors) == 0 }

type Service struct {
	api       paypalAPI
	orders    orderStore
	recurring recurringStore
	settings  settingsProvider
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	storeName string
	now       func() time.Time
}

func NewService(api paypalAPI, orders orderStore, recurring recurringStore, settings settingsProvider, publisher events.Publisher, m *metrics.Metrics, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		api:       api,
		orders:    orders,
		recurring: recurring,
		settings:  settings,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithStoreName sets the store name used in recurring profile descriptions.
func (s *Service) WithStoreName(name string) *Service {
	s.storeName = name
	return s
}

// ProcessPayment completes the Express Checkout payment for a staged request.
// A rejected call is reported through the result; err is set only when PayPal was not reached.
func (s *Service) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*ProcessPaymentResult, error) {
	settings := s.settings.Current(ctx)
	guid := req.Pending.OrderGUID.String()

	details := req.Details
	details.Custom = guid
	details.InvoiceID = guid
	details.PaymentAction = string(settings.PaymentAction)

	resp, err := s.api.DoExpressCheckoutPayment(ctx, paypal.EnvironmentFor(settings), paypal.DoExpressCheckoutPaymentRequest{
		Token:          req.Pending.Token,
		PayerID:        req.Pending.PayerID,
		PaymentAction:  string(settings.PaymentAction),
		ButtonSource:   paypal.BNCode,
		PaymentDetails: details,
	})
	if err != nil {
		s.log.Error("DoExpressCheckoutPayment failed", zap.String("order_guid", guid), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	result := &ProcessPaymentResult{
		NewStatus: domain.PaymentPending,
		Notes:     ResponseNotes("DoExpressCheckoutPaymentResponseType", resp),
	}
	s.debugNotes(settings, result.Notes)
	if !resp.Succeeded() {
		result.Errors = resp.ErrorStrings()
		return result, nil
	}

	result.NewStatus = domain.PaymentPaid
	if settings.PaymentAction == domain.PaymentActionAuthorization {
		result.NewStatus = domain.PaymentAuthorized
	}
	result.AuthorizationTransactionID = req.Pending.Token
	if len(resp.PaymentInfo) > 0 {
		result.CaptureTransactionID = resp.PaymentInfo[0].TransactionID
	}
	return result, nil
}

// CreateRecurringProfile opens a PayPal billing profile for a recurring checkout.
// The initial order stays pending until PayPal reports the first cycle.
func (s *Service) CreateRecurringProfile(ctx context.Context, req ProcessPaymentRequest) (*ProcessPaymentResult, error) {
	period, err := billingPeriod(req.Pending.RecurringCyclePeriod)
	if err != nil {
		return nil, err
	}
	settings := s.settings.Current(ctx)
	currency := req.Details.Currency
	if currency == "" {
		currency = req.Pending.Currency
	}

	resp, err := s.api.CreateRecurringPaymentsProfile(ctx, paypal.EnvironmentFor(settings), paypal.CreateRecurringPaymentsProfileRequest{
		Token:              req.Pending.Token,
		ProfileStartDate:   s.now(),
		ProfileReference:   req.Pending.OrderGUID.String(),
		Description:        s.storeName + " - recurring payment",
		BillingPeriod:      period,
		BillingFrequency:   req.Pending.RecurringCycleLength,
		TotalBillingCycles: req.Pending.RecurringTotalCycles,
		Amount:             req.Pending.OrderTotal,
		Currency:           currency,
	})
	if err != nil {
		s.log.Error("CreateRecurringPaymentsProfile failed", zap.String("order_guid", req.Pending.OrderGUID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	result := &ProcessPaymentResult{
		NewStatus: domain.PaymentPending,
		Notes:     ResponseNotes("CreateRecurringPaymentsProfileResponseType", resp),
	}
	s.debugNotes(settings, result.Notes)
	if !resp.Succeeded() {
		result.Errors = resp.ErrorStrings()
	}
	return result, nil
}

// Capture collects an authorized payment in full.
func (s *Service) Capture(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentAuthorized {
		return nil, domain.ErrTransitionNotAllowed
	}

	settings := s.settings.Current(ctx)
	resp, err := s.api.DoCapture(ctx, paypal.EnvironmentFor(settings), paypal.DoCaptureRequest{
		AuthorizationID: order.CaptureTransactionID,
		Amount:          order.OrderTotal,
		Currency:        order.Currency,
		CompleteType:    "Complete",
		InvoiceID:       order.OrderGUID,
		MsgSubID:        strconv.FormatInt(order.ID, 10) + "-capture",
	})
	if err != nil {
		return nil, s.unavailable("DoCapture", order, err)
	}
	s.attachNotes(ctx, settings, order.ID, ResponseNotes("DoCaptureResponseType", resp))
	if !resp.Succeeded() {
		return nil, &ProviderError{Messages: resp.ErrorStrings()}
	}

	return s.transition(ctx, order.ID, resp.TransactionID, func(o *domain.Order) domain.TransitionResult {
		res := o.MarkPaid(s.now())
		if res.Applied && resp.TransactionID != "" {
			o.CaptureTransactionID = resp.TransactionID
		}
		return res
	})
}

// Refund returns money to the buyer. A zero amount or the full remaining amount is a full refund.
func (s *Service) Refund(ctx context.Context, orderID int64, amount float64) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanRefundOffline() {
		return nil, domain.ErrTransitionNotAllowed
	}
	remaining := order.RemainingRefundable()
	if amount < 0 || amount > remaining {
		return nil, domain.ErrInvalidRefundAmount
	}
	partial := amount > 0 && amount < remaining
	if !partial {
		amount = remaining
	}

	refundType := "Full"
	if partial {
		refundType = "Partial"
	}
	settings := s.settings.Current(ctx)
	resp, err := s.api.RefundTransaction(ctx, paypal.EnvironmentFor(settings), paypal.RefundTransactionRequest{
		TransactionID: order.CaptureTransactionID,
		RefundType:    refundType,
		Amount:        amount,
		Currency:      order.Currency,
		MsgSubID:      fmt.Sprintf("%d-%s-%s", order.ID, dotnetBool(partial), paypal.FormatAmount(amount)),
	})
	if err != nil {
		return nil, s.unavailable("RefundTransaction", order, err)
	}
	s.attachNotes(ctx, settings, order.ID, ResponseNotes("RefundTransactionResponseType", resp))
	if !resp.Succeeded() {
		return nil, &ProviderError{Messages: resp.ErrorStrings()}
	}

	return s.transition(ctx, order.ID, resp.RefundTransactionID, func(o *domain.Order) domain.TransitionResult {
		if partial {
			return o.PartialRefund(amount)
		}
		return o.RefundOffline()
	})
}

// Void cancels an authorization that was never captured.
func (s *Service) Void(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanVoidOffline() {
		return nil, domain.ErrTransitionNotAllowed
	}

	txnID := order.CaptureTransactionID
	if txnID == "" {
		txnID = order.AuthorizationTransactionID
	}
	settings := s.settings.Current(ctx)
	resp, err := s.api.DoVoid(ctx, paypal.EnvironmentFor(settings), paypal.DoVoidRequest{
		AuthorizationID: txnID,
		MsgSubID:        strconv.FormatInt(order.ID, 10) + "-void",
	})
	if err != nil {
		return nil, s.unavailable("DoVoid", order, err)
	}
	s.attachNotes(ctx, settings, order.ID, ResponseNotes("DoVoidResponseType", resp))
	if !resp.Succeeded() {
		return nil, &ProviderError{Messages: resp.ErrorStrings()}
	}

	return s.transition(ctx, order.ID, txnID, func(o *domain.Order) domain.TransitionResult {
		return o.VoidOffline()
	})
}

// CancelRecurringProfile cancels the PayPal profile behind a recurring payment and deactivates it.
func (s *Service) CancelRecurringProfile(ctx context.Context, recurringPaymentID int64) (*domain.RecurringPayment, error) {
	rp, err := s.recurring.GetByID(ctx, recurringPaymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecurringPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, rp.InitialOrderID)
	if err != nil {
		return nil, err
	}

	settings := s.settings.Current(ctx)
	resp, err := s.api.ManageRecurringPaymentsProfileStatus(ctx, paypal.EnvironmentFor(settings), paypal.ManageRecurringPaymentsProfileStatusRequest{
		ProfileID: order.OrderGUID,
		Action:    "Cancel",
	})
	if err != nil {
		return nil, s.unavailable("ManageRecurringPaymentsProfileStatus", order, err)
	}
	s.attachNotes(ctx, settings, order.ID, ResponseNotes("ManageRecurringPaymentsProfileStatusResponseType", resp))
	if !resp.Succeeded() {
		return nil, &ProviderError{Messages: resp.ErrorStrings()}
	}

	if err := s.recurring.Deactivate(ctx, rp.ID); err != nil {
		return nil, err
	}
	s.log.Info("recurring payment cancelled", zap.Int64("recurring_payment_id", rp.ID), zap.Int64("order_id", order.ID))
	return s.recurring.GetByID(ctx, rp.ID)
}

// OrderDetails returns an order with its notes and recurring payments.
func (s *Service) OrderDetails(ctx context.Context, orderID int64) (*OrderDetailsResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	notes, err := s.orders.Notes(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	recurring, err := s.recurring.ListByInitialOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Notes = notes
	return &OrderDetailsResponse{Order: order, RecurringPayments: recurring}, nil
}

func (s *Service) loadOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *Service) transition(ctx context.Context, orderID int64, txnID string, fn func(o *domain.Order) domain.TransitionResult) (*domain.Order, error) {
	res, updated, err := s.orders.Transition(ctx, orderID, fn)
	if err != nil {
		return nil, err
	}
	if !res.Applied {
		return nil, res.Err
	}

	s.metrics.RecordTransition(events.SourceAdmin, string(res.From), string(res.To))
	if err := s.publisher.PublishOrderPayment(ctx, events.OrderPaymentEvent{
		OrderID:    updated.ID,
		OrderGUID:  updated.OrderGUID,
		StoreID:    updated.StoreID,
		CustomerID: updated.CustomerID,
		From:       string(res.From),
		To:         string(res.To),
		Source:     events.SourceAdmin,
		OrderTotal: updated.OrderTotal,
		Currency:   updated.Currency,
		TxnID:      txnID,
		OccurredAt: s.now(),
	}); err != nil {
		s.log.Warn("order payment event not published", zap.Int64("order_id", updated.ID), zap.Error(err))
	}
	return updated, nil
}

func (s *Service) unavailable(method string, order *domain.Order, err error) error {
	s.log.Error(method+" failed", zap.Int64("order_id", order.ID), zap.Error(err))
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

// attachNotes stores response notes on the order. Failures only get logged.
func (s *Service) attachNotes(ctx context.Context, settings domain.PayPalSettings, orderID int64, notes []string) {
	for _, note := range notes {
		if err := s.orders.AddNote(ctx, orderID, note, false); err != nil {
			s.log.Warn("order note not saved", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}
	s.debugNotes(settings, notes)
}

func (s *Service) debugNotes(settings domain.PayPalSettings, notes []string) {
	if !settings.EnableDebugLogging {
		return
	}
	for _, note := range notes {
		s.log.Debug("paypal response", zap.String("message", note))
	}
}

func billingPeriod(p domain.CyclePeriod) (string, error) {
	switch p {
	case domain.CycleDays:
		return "Day", nil
	case domain.CycleWeeks:
		return "Week", nil
	case domain.CycleMonths:
		return "Month", nil
	case domain.CycleYears:
		return "Year", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCyclePeriod, p)
	}
}

// dotnetBool keeps message sub ids stable with the ones already sent to PayPal.
func dotnetBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
