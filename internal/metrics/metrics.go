package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	PayPalCallsTotal    *prometheus.CounterVec
	PayPalCallDuration  *prometheus.HistogramVec
	IPNReceivedTotal    *prometheus.CounterVec
	IPNDuplicatesTotal  prometheus.Counter
	OrderTransitions    *prometheus.CounterVec
	OrdersPlacedTotal   prometheus.Counter
	PlacementFailures   *prometheus.CounterVec
	RecurringCycles     prometheus.Counter
	StagedRequestsSwept prometheus.Counter
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PayPalCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paypal_api_calls_total",
				Help: "PayPal NVP calls by method and ack",
			},
			[]string{"method", "ack"},
		),
		PayPalCallDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paypal_api_call_duration_seconds",
				Help:    "PayPal NVP call latency",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"method"},
		),
		IPNReceivedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paypal_ipn_received_total",
				Help: "IPN deliveries by verification result",
			},
			[]string{"verified"},
		),
		IPNDuplicatesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "paypal_ipn_duplicates_total",
			Help: "IPN deliveries whose body was already seen",
		}),
		OrderTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_payment_transitions_total",
				Help: "Applied order payment status transitions",
			},
			[]string{"source", "from", "to"},
		),
		OrdersPlacedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "paypal_orders_placed_total",
			Help: "Orders placed through Express Checkout",
		}),
		PlacementFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paypal_order_placement_failures_total",
				Help: "Order placement attempts that did not produce an order",
			},
			[]string{"reason"},
		),
		RecurringCycles: f.NewCounter(prometheus.CounterOpts{
			Name: "recurring_payment_cycles_total",
			Help: "Recurring payment cycles recorded from IPN",
		}),
		StagedRequestsSwept: f.NewCounter(prometheus.CounterOpts{
			Name: "staged_requests_swept_total",
			Help: "Expired staged entries removed by the sweeper",
		}),
	}
}

func (m *Metrics) RecordPayPalCall(method, ack string, seconds float64) {
	if m == nil {
		return
	}
	m.PayPalCallsTotal.WithLabelValues(method, ack).Inc()
	m.PayPalCallDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) RecordIPN(verified bool) {
	if m == nil {
		return
	}
	m.IPNReceivedTotal.WithLabelValues(strconv.FormatBool(verified)).Inc()
}

func (m *Metrics) RecordIPNDuplicate() {
	if m == nil {
		return
	}
	m.IPNDuplicatesTotal.Inc()
}

func (m *Metrics) RecordTransition(source, from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(source, from, to).Inc()
}

func (m *Metrics) RecordOrderPlaced() {
	if m == nil {
		return
	}
	m.OrdersPlacedTotal.Inc()
}

func (m *Metrics) RecordPlacementFailure(reason string) {
	if m == nil {
		return
	}
	m.PlacementFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordRecurringCycle() {
	if m == nil {
		return
	}
	m.RecurringCycles.Inc()
}

func (m *Metrics) RecordSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.StagedRequestsSwept.Add(float64(n))
}
