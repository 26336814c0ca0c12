package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks cart mutations, order/contact submissions and backend
// order intake. A nil *Metrics is valid and records nothing.
type Metrics struct {
	CartMutations      *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	SubmissionDuration *prometheus.HistogramVec
	OrdersPlaced       prometheus.Counter
	OrdersRejected     prometheus.Counter
	ContactsReceived   prometheus.Counter
	CorruptCartLoads   prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers every metric on reg. Pass prometheus.NewRegistry() in tests
// to avoid duplicate registration against the default registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		CartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ignito_cart_mutations_total",
			Help: "Cart mutations by operation and result",
		}, []string{"op", "result"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ignito_submissions_total",
			Help: "Outbound order/contact submissions by kind and outcome",
		}, []string{"kind", "outcome"}),
		SubmissionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ignito_submission_duration_seconds",
			Help:    "Duration of outbound order/contact submissions",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "ignito_orders_placed_total",
			Help: "Orders accepted by the order endpoint",
		}),
		OrdersRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "ignito_orders_rejected_total",
			Help: "Orders rejected by the order endpoint for missing information",
		}),
		ContactsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "ignito_contacts_received_total",
			Help: "Contact messages accepted by the contact endpoint",
		}),
		CorruptCartLoads: factory.NewCounter(prometheus.CounterOpts{
			Name: "ignito_cart_corrupt_loads_total",
			Help: "Stored carts discarded because they could not be decoded",
		}),
		gatherer: reg,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// CartMutation records an add/remove/clear attempt.
func (m *Metrics) CartMutation(op string, applied bool) {
	if m == nil {
		return
	}
	result := "applied"
	if !applied {
		result = "rejected"
	}
	m.CartMutations.WithLabelValues(op, result).Inc()
}

// ObserveSubmission records an outbound submission outcome and its duration.
// Call with time.Now() taken before the request was sent.
func (m *Metrics) ObserveSubmission(kind, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind, outcome).Inc()
	m.SubmissionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// OrderPlaced records an accepted order.
func (m *Metrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
}

// OrderRejected records an order refused for missing fields.
func (m *Metrics) OrderRejected() {
	if m == nil {
		return
	}
	m.OrdersRejected.Inc()
}

// ContactReceived records an accepted contact message.
func (m *Metrics) ContactReceived() {
	if m == nil {
		return
	}
	m.ContactsReceived.Inc()
}

// CorruptCart records a stored cart that was discarded on load.
func (m *Metrics) CorruptCart() {
	if m == nil {
		return
	}
	m.CorruptCartLoads.Inc()
}
