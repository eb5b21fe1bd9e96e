package ipn

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"paypalexpress/internal/database/dbtest"
	"paypalexpress/internal/domain"
	"paypalexpress/internal/events"
	"paypalexpress/internal/metrics"
	"paypalexpress/internal/repository"
)

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

type fixture struct {
	orders    *repository.OrderRepository
	recurring *repository.RecurringPaymentRepository
	delivery  *repository.IPNDeliveryRepository
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	logs      *observer.ObservedLogs
	rec       *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		orders:    repository.NewOrderRepository(db),
		recurring: repository.NewRecurringPaymentRepository(db),
		delivery:  repository.NewIPNDeliveryRepository(db),
		publisher: &recordingPublisher{},
		metrics:   metrics.New(prometheus.NewRegistry()),
		logs:      logs,
	}
	f.rec = NewReconciler(f.orders, f.recurring, f.delivery, f.publisher, f.metrics, zap.New(core))
	return f
}

func (f *fixture) order(t *testing.T, status domain.PaymentStatus) *domain.Order {
	t.Helper()
	o := &domain.Order{OrderGUID: uuid.NewString(), StoreID: 1, CustomerID: 1, OrderTotal: 40, PaymentStatus: status}
	require.NoError(t, f.orders.Create(context.Background(), o))
	return o
}

func delivery(verified bool, kv ...string) Event {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	raw := v.Encode()
	return Event{RawBody: raw, Fields: ParseFields(raw), Verified: verified}
}

func TestReconcileCompletedMarksPaidOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPending)

	ev := delivery(true, "payment_status", "Completed", "custom", o.OrderGUID, "txn_id", "TX-1")
	f.rec.Reconcile(ctx, ev)

	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)

	notes, err := f.orders.Notes(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Note, "New payment status: Paid")
	assert.False(t, notes[0].DisplayToCustomer)

	f.rec.Reconcile(ctx, ev)

	notes, err = f.orders.Notes(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 2, "redelivery appends the note again")
	assert.Len(t, f.publisher.events, 1, "redelivery must not transition again")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrderTransitions.WithLabelValues("ipn", "pending", "paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.IPNDuplicatesTotal))
}

func TestReconcileUnverifiedDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPending)

	f.rec.Reconcile(ctx, delivery(false, "payment_status", "Completed", "custom", o.OrderGUID))

	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
	notes, err := f.orders.Notes(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, 1, f.logs.FilterMessage("PayPal IPN failed.").Len())
}

func TestReconcilePendingOnlyAddsNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPending)

	f.rec.Reconcile(ctx, delivery(true, "payment_status", "Pending", "pending_reason", "echeck", "custom", o.OrderGUID))

	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
	notes, err := f.orders.Notes(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Note, "New payment status: Pending")
}

func TestReconcileRejectedTransitionIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPending)

	f.rec.Reconcile(ctx, delivery(true, "payment_status", "Refunded", "custom", o.OrderGUID))

	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, 0, f.logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestReconcileAuthorizationThenVoid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPending)

	f.rec.Reconcile(ctx, delivery(true, "payment_status", "Pending", "pending_reason", "authorization", "custom", o.OrderGUID))
	f.rec.Reconcile(ctx, delivery(true, "payment_status", "Voided", "custom", o.OrderGUID))

	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentVoided, stored.PaymentStatus)
	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, "authorized", f.publisher.events[0].To)
	assert.Equal(t, "voided", f.publisher.events[1].To)
}

func TestReconcileUnknownOrder(t *testing.T) {
	f := newFixture(t)

	f.rec.Reconcile(context.Background(), delivery(true, "payment_status", "Completed", "custom", uuid.NewString()))
	f.rec.Reconcile(context.Background(), delivery(true, "payment_status", "Completed", "custom", "garbage"))

	assert.Equal(t, 2, f.logs.FilterMessage("PayPal IPN. Order is not found").Len())
}

func TestReconcileProfileCreatedIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPending)

	f.rec.Reconcile(ctx, delivery(true, "txn_type", "recurring_payment_profile_created", "payment_status", "Completed", "custom", o.OrderGUID))

	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
	notes, err := f.orders.Notes(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestReconcileRecurringCycles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, domain.PaymentPaid)
	rp := &domain.RecurringPayment{
		InitialOrderID: o.ID,
		CycleLength:    1,
		CyclePeriod:    domain.CycleMonths,
		TotalCycles:    3,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:       true,
	}
	require.NoError(t, f.recurring.Create(ctx, rp))

	cycle := func(txn, status string) {
		f.rec.Reconcile(ctx, delivery(true, "txn_type", "recurring_payment", "rp_invoice_id", o.OrderGUID, "payment_status", status, "txn_id", txn))
	}

	cycle("TX-1", "Completed")
	cycle("TX-2", "Completed")
	cycle("TX-2", "Completed")
	cycle("TX-3", "Failed")

	count, err := f.recurring.HistoryCount(ctx, rp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stored, err := f.recurring.GetByID(ctx, rp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CyclesProcessed)
	assert.True(t, stored.IsActive)
	assert.Equal(t, 4, f.logs.FilterMessage("PayPal IPN. Recurring info").Len())
}

func TestReconcileRecurringUnknownOrder(t *testing.T) {
	f := newFixture(t)

	f.rec.Reconcile(context.Background(), delivery(true, "txn_type", "recurring_payment", "rp_invoice_id", uuid.NewString(), "payment_status", "Completed"))

	assert.Equal(t, 1, f.logs.FilterMessage("PayPal IPN. Order is not found").Len())
}
