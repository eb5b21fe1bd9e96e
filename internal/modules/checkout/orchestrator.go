package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/metrics"
	"paypalexpress/internal/pkg/keylock"

	"go.uber.org/zap"
)

// PlaceOrderResult tells the caller where to send the buyer after a placement attempt.
type PlaceOrderResult struct {
	RedirectToCart   bool
	IsRedirected     bool
	CompletedOrderID *int64
	Warnings         []string
}

type noPostProcess struct{}

func (noPostProcess) PostProcess(context.Context, *domain.Order) (bool, error) { return false, nil }

// Orchestrator finalizes the staged payment request of a session into an order.
type Orchestrator struct {
	state    *State
	orders   orderStore
	pipeline orderPipeline
	post     PostProcessor
	settings settingsProvider
	locks    *keylock.Locker
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewOrchestrator(state *State, orders orderStore, pipeline orderPipeline, settings settingsProvider, m *metrics.Metrics, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		state:    state,
		orders:   orders,
		pipeline: pipeline,
		post:     noPostProcess{},
		settings: settings,
		locks:    keylock.New(),
		metrics:  m,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (o *Orchestrator) WithPostProcessor(p PostProcessor) *Orchestrator {
	if p != nil {
		o.post = p
	}
	return o
}

// PlaceOrder consumes the staged request of sess. Unless an order results, the request
// is staged again so the buyer can retry with the same order GUID. A request whose GUID
// already has an order is dropped.
func (o *Orchestrator) PlaceOrder(ctx context.Context, sess Session) (result PlaceOrderResult) {
	defer func() {
		if rec := recover(); rec != nil {
			o.log.Error("place order panic", zap.String("session_id", sess.ID), zap.Any("panic", rec))
			o.metrics.RecordPlacementFailure("panic")
			result = PlaceOrderResult{Warnings: []string{fmt.Sprint(rec)}}
		}
	}()

	unlock := o.locks.Lock(sess.ID)
	defer unlock()

	req, ok := o.state.Requests.TakeOnce(sess.ID)
	if !ok {
		return PlaceOrderResult{RedirectToCart: true}
	}
	placed := false
	defer func() {
		if !placed {
			o.state.Requests.Stage(sess.ID, req)
		}
	}()

	settings := o.settings.Current(ctx)
	valid, err := o.intervalValid(ctx, sess, settings.MinOrderInterval())
	if err != nil {
		return o.failed(sess, "error", err)
	}
	if !valid {
		o.metrics.RecordPlacementFailure("min_interval")
		return PlaceOrderResult{Warnings: []string{msgMinOrderInterval}}
	}

	req.StoreID = sess.StoreID
	req.CustomerID = sess.CustomerID
	req.PaymentMethodSystemName = domain.PayPalExpressSystemName

	res, err := o.pipeline.PlaceOrder(ctx, sess, req)
	if errors.Is(err, ErrOrderAlreadyPlaced) {
		placed = true
		o.log.Info("staged request already has an order",
			zap.String("session_id", sess.ID),
			zap.String("order_guid", req.OrderGUID.String()),
		)
		return PlaceOrderResult{RedirectToCart: true}
	}
	if err != nil {
		return o.failed(sess, "error", err)
	}
	if !res.Success() {
		o.metrics.RecordPlacementFailure("declined")
		o.log.Warn("order not placed",
			zap.String("session_id", sess.ID),
			zap.String("order_guid", req.OrderGUID.String()),
			zap.Strings("errors", res.Errors),
		)
		return PlaceOrderResult{Warnings: res.Errors}
	}
	placed = true

	order := res.Order
	for _, note := range res.Notes {
		if err := o.orders.AddNote(ctx, order.ID, note, false); err != nil {
			o.log.Warn("order note not saved", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}
	o.metrics.RecordOrderPlaced()
	o.log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_guid", order.OrderGUID),
		zap.String("payment_status", string(order.PaymentStatus)),
	)

	redirected, err := o.post.PostProcess(ctx, order)
	if err != nil {
		o.log.Warn("post processing failed", zap.Int64("order_id", order.ID), zap.Error(err))
	}
	if redirected {
		return PlaceOrderResult{IsRedirected: true}
	}
	id := order.ID
	return PlaceOrderResult{CompletedOrderID: &id}
}

// intervalValid reports whether enough time passed since the customer's last order.
func (o *Orchestrator) intervalValid(ctx context.Context, sess Session, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return true, nil
	}
	last, err := o.orders.LatestByCustomer(ctx, sess.StoreID, sess.CustomerID)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	return o.now().Sub(last.CreatedAt) > interval, nil
}

func (o *Orchestrator) failed(sess Session, reason string, err error) PlaceOrderResult {
	o.metrics.RecordPlacementFailure(reason)
	o.log.Error("place order failed", zap.String("session_id", sess.ID), zap.Error(err))
	return PlaceOrderResult{Warnings: []string{err.Error()}}
}
