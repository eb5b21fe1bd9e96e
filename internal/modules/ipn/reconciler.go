package ipn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"

	"paypalexpress/internal/domain"
	"paypalexpress/internal/events"
	"paypalexpress/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event is a single IPN delivery after the verification round trip.
type Event struct {
	RawBody  string
	Fields   Fields
	Verified bool
}

type Reconciler struct {
	orders     orderStore
	recurring  recurringStore
	deliveries deliveryLog
	publisher  events.Publisher
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time
}

func NewReconciler(orders orderStore, recurring recurringStore, deliveries deliveryLog, publisher events.Publisher, m *metrics.Metrics, log *zap.Logger) *Reconciler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		orders:     orders,
		recurring:  recurring,
		deliveries: deliveries,
		publisher:  publisher,
		metrics:    m,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile applies a delivery to local state. Failures are logged, never returned.
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) {
	if ev.Fields == nil {
		ev.Fields = ParseFields(ev.RawBody)
	}
	status := MapStatus(ev.Fields.Get("payment_status"), ev.Fields.Get("pending_reason"))

	r.metrics.RecordIPN(ev.Verified)
	r.recordDelivery(ctx, ev, status)

	if !ev.Verified {
		r.log.Error("PayPal IPN failed.", zap.String("payload", ev.RawBody))
		return
	}

	note := BuildNote(ev.Fields, status)
	txnID := ev.Fields.Get("txn_id")

	switch tx := Classify(ev.Fields).(type) {
	case ProfileCreated:
	case RecurringPayment:
		r.reconcileRecurring(ctx, tx.ProfileGUID, status, txnID, note)
	case OneTime:
		r.reconcileOneTime(ctx, tx.OrderGUID, status, txnID, note)
	}
}

func (r *Reconciler) reconcileRecurring(ctx context.Context, guid uuid.UUID, status domain.PaymentStatus, txnID, note string) {
	order, err := r.findOrder(ctx, guid)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			r.log.Error("PayPal IPN. Order is not found", zap.String("note", note))
		} else {
			r.log.Error("PayPal IPN. Order lookup failed", zap.String("order_guid", guid.String()), zap.Error(err))
		}
		return
	}

	profiles, err := r.recurring.ListByInitialOrder(ctx, order.ID)
	if err != nil {
		r.log.Error("PayPal IPN. Recurring payments lookup failed", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	if status == domain.PaymentAuthorized || status == domain.PaymentPaid {
		for _, rp := range profiles {
			r.recordCycle(ctx, rp, order.ID, txnID)
		}
	}

	r.log.Info("PayPal IPN. Recurring info", zap.Int64("order_id", order.ID), zap.String("note", note))
}

func (r *Reconciler) recordCycle(ctx context.Context, rp domain.RecurringPayment, orderID int64, txnID string) {
	count, err := r.recurring.HistoryCount(ctx, rp.ID)
	if err != nil {
		r.log.Error("PayPal IPN. Recurring history lookup failed", zap.Int64("recurring_payment_id", rp.ID), zap.Error(err))
		return
	}

	var recorded bool
	if count == 0 {
		recorded, err = r.recurring.InsertFirstCycle(ctx, rp.ID, orderID, txnID)
	} else {
		recorded, err = r.recurring.AdvanceCycle(ctx, rp.ID, orderID, txnID)
	}
	if err != nil {
		r.log.Error("PayPal IPN. Recurring cycle not recorded", zap.Int64("recurring_payment_id", rp.ID), zap.Error(err))
		return
	}
	if recorded {
		r.metrics.RecordRecurringCycle()
	}
}

func (r *Reconciler) reconcileOneTime(ctx context.Context, guid uuid.UUID, status domain.PaymentStatus, txnID, note string) {
	order, err := r.findOrder(ctx, guid)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			r.log.Error("PayPal IPN. Order is not found", zap.String("note", note))
		} else {
			r.log.Error("PayPal IPN. Order lookup failed", zap.String("order_guid", guid.String()), zap.Error(err))
		}
		return
	}

	if err := r.orders.AddNote(ctx, order.ID, note, false); err != nil {
		r.log.Error("PayPal IPN. Order note not saved", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	if status == domain.PaymentPending {
		return
	}

	at := r.now()
	res, updated, err := r.orders.Transition(ctx, order.ID, func(o *domain.Order) domain.TransitionResult {
		return o.ApplyStatus(status, at)
	})
	if err != nil {
		r.log.Error("PayPal IPN. Order status not updated", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}
	if !res.Applied {
		r.log.Debug("PayPal IPN. Transition skipped",
			zap.Int64("order_id", order.ID),
			zap.String("current", string(res.From)),
			zap.String("target", string(status)),
		)
		return
	}

	r.metrics.RecordTransition(events.SourceIPN, string(res.From), string(res.To))
	if err := r.publisher.PublishOrderPayment(ctx, events.OrderPaymentEvent{
		OrderID:    updated.ID,
		OrderGUID:  updated.OrderGUID,
		StoreID:    updated.StoreID,
		CustomerID: updated.CustomerID,
		From:       string(res.From),
		To:         string(res.To),
		Source:     events.SourceIPN,
		OrderTotal: updated.OrderTotal,
		Currency:   updated.Currency,
		TxnID:      txnID,
		OccurredAt: at,
	}); err != nil {
		r.log.Warn("order payment event not published", zap.Int64("order_id", updated.ID), zap.Error(err))
	}
}

func (r *Reconciler) findOrder(ctx context.Context, guid uuid.UUID) (*domain.Order, error) {
	if guid == uuid.Nil {
		return nil, ErrOrderNotFound
	}
	order, err := r.orders.GetByGUID(ctx, guid.String())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (r *Reconciler) recordDelivery(ctx context.Context, ev Event, status domain.PaymentStatus) {
	if r.deliveries == nil {
		return
	}
	sum := sha256.Sum256([]byte(ev.RawBody))
	now := r.now()
	dup, err := r.deliveries.Record(ctx, &domain.IPNDelivery{
		BodyHash:    hex.EncodeToString(sum[:]),
		TxnID:       ev.Fields.Get("txn_id"),
		TxnType:     ev.Fields.Get("txn_type"),
		Verified:    ev.Verified,
		Status:      status,
		RawBody:     ev.RawBody,
		FirstSeenAt: now,
		LastSeenAt:  now,
	})
	if err != nil {
		r.log.Warn("ipn delivery not logged", zap.Error(err))
		return
	}
	if dup {
		r.metrics.RecordIPNDuplicate()
		r.log.Info("ipn redelivery", zap.String("txn_id", ev.Fields.Get("txn_id")))
	}
}

// BuildNote renders the order note for a delivery. Fields are listed in key order.
func BuildNote(fields Fields, status domain.PaymentStatus) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("Paypal IPN:\n")
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(fields[k])
		sb.WriteString("\n")
	}
	sb.WriteString("New payment status: ")
	sb.WriteString(status.Label())
	return sb.String()
}
