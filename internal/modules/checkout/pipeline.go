package checkout

import (
	"context"
	"errors"
	"time"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/events"
	"paypalexpress/internal/metrics"
	"paypalexpress/internal/modules/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PipelineResult is the outcome of one placement attempt. Order is set only on success.
type PipelineResult struct {
	Order  *domain.Order
	Errors []string
	// Notes hold the provider response to attach to the order.
	Notes []string
}

func (r *PipelineResult) Success() bool { return r.Order != nil && len(r.Errors) == 0 }

// Pipeline turns a staged payment request and the session cart into a paid order.
type Pipeline struct {
	carts     cartStore
	customers customerStore
	orders    orderStore
	recurring recurringStore
	payments  paymentProcessor
	shipping  *Shipping
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewPipeline(carts cartStore, customers customerStore, orders orderStore, recurring recurringStore, payments paymentProcessor, shipping *Shipping, publisher events.Publisher, m *metrics.Metrics, log *zap.Logger) *Pipeline {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		carts:     carts,
		customers: customers,
		orders:    orders,
		recurring: recurring,
		payments:  payments,
		shipping:  shipping,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder charges req and creates the order. Declines come back as result errors;
// err is reserved for storage failures.
func (p *Pipeline) PlaceOrder(ctx context.Context, sess Session, req domain.PendingPaymentRequest) (*PipelineResult, error) {
	cart, err := p.carts.List(ctx, req.StoreID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return &PipelineResult{Errors: []string{msgCartEmpty}}, nil
	}

	var option domain.ShippingOption
	if cart.RequiresShipping() {
		selected, ok := p.shipping.Selected(sess)
		if !ok {
			return &PipelineResult{Errors: []string{msgShippingRequired}}, nil
		}
		option = selected
	}

	guid := req.OrderGUID.String()
	if _, err := p.orders.GetByGUID(ctx, guid); err == nil {
		return nil, ErrOrderAlreadyPlaced
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Nothing after the charge may fail on a read.
	customer, err := p.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	details := paymentDetails(cart, option.Rate, req.Currency)
	req.OrderTotal = details.OrderTotal
	preq := payment.ProcessPaymentRequest{Pending: req, Details: details}

	var paid *payment.ProcessPaymentResult
	if req.IsRecurring {
		paid, err = p.payments.CreateRecurringProfile(ctx, preq)
	} else {
		paid, err = p.payments.ProcessPayment(ctx, preq)
	}
	if errors.Is(err, payment.ErrProviderUnavailable) {
		return &PipelineResult{Errors: []string{msgProviderDown}}, nil
	}
	if err != nil {
		return nil, err
	}
	if !paid.Success() {
		return &PipelineResult{Errors: paid.Errors, Notes: paid.Notes}, nil
	}

	now := p.now()
	order := &domain.Order{
		OrderGUID:                     guid,
		StoreID:                       req.StoreID,
		CustomerID:                    req.CustomerID,
		OrderTotal:                    req.OrderTotal,
		Currency:                      req.Currency,
		PaymentStatus:                 paid.NewStatus,
		PaymentMethodSystemName:       req.PaymentMethodSystemName,
		AuthorizationTransactionID:    paid.AuthorizationTransactionID,
		CaptureTransactionID:          paid.CaptureTransactionID,
		BillingAddressID:              customer.BillingAddressID,
		ShippingMethod:                option.Name,
		ShippingRateComputationMethod: option.ShippingRateComputationMethod,
		ShippingTotal:                 option.Rate,
	}
	if cart.RequiresShipping() {
		order.ShippingAddressID = customer.ShippingAddressID
	}
	if order.PaymentStatus == domain.PaymentPaid {
		order.PaidAt = &now
	}
	if err := p.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if item, ok := cart.Recurring(); ok && req.IsRecurring {
		if err := p.recurring.Create(ctx, &domain.RecurringPayment{
			InitialOrderID: order.ID,
			CycleLength:    item.RecurringCycleLength,
			CyclePeriod:    item.RecurringCyclePeriod,
			TotalCycles:    item.RecurringTotalCycles,
			StartDate:      now,
			IsActive:       true,
		}); err != nil {
			p.log.Error("recurring payment not saved", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	if err := p.carts.Clear(ctx, req.StoreID, req.CustomerID); err != nil {
		p.log.Warn("cart not cleared", zap.Int64("customer_id", req.CustomerID), zap.Error(err))
	}
	p.shipping.ClearShippingOption(sess)

	if order.PaymentStatus != domain.PaymentPending {
		p.statusChanged(ctx, order, now)
	}
	return &PipelineResult{Order: order, Notes: paid.Notes}, nil
}

func (p *Pipeline) statusChanged(ctx context.Context, order *domain.Order, at time.Time) {
	p.metrics.RecordTransition(events.SourceCheckout, string(domain.PaymentPending), string(order.PaymentStatus))
	if err := p.publisher.PublishOrderPayment(ctx, events.OrderPaymentEvent{
		OrderID:    order.ID,
		OrderGUID:  order.OrderGUID,
		StoreID:    order.StoreID,
		CustomerID: order.CustomerID,
		From:       string(domain.PaymentPending),
		To:         string(order.PaymentStatus),
		Source:     events.SourceCheckout,
		OrderTotal: order.OrderTotal,
		Currency:   order.Currency,
		TxnID:      order.CaptureTransactionID,
		OccurredAt: at,
	}); err != nil {
		p.log.Warn("order payment event not published", zap.Int64("order_id", order.ID), zap.Error(err))
	}
}
