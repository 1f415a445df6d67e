package ctxgraph

import (
	"weak"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ctxgraph"

// metrics is nil when the Context was built without WithMetrics; every method
// tolerates that.
type metrics struct {
	tokensIssued   prometheus.Counter
	tokensReleased prometheus.Counter
	serviceEvents  *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	liveTokens     prometheus.GaugeFunc
	pending        prometheus.GaugeFunc

	registerer prometheus.Registerer
	registered []prometheus.Collector
}

func newMetrics(reg prometheus.Registerer, c *Context) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	labels := prometheus.Labels{"context": c.name}
	// Gauges read through a weak pointer so the registry does not keep the
	// Context alive.
	wc := weak.Make(c)

	m := &metrics{
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "tokens_issued_total",
			Help:        "Tokens issued to wrapped nodes.",
			ConstLabels: labels,
		}),
		tokensReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "tokens_released_total",
			Help:        "Tokens dropped from the live set after their node was collected.",
			ConstLabels: labels,
		}),
		serviceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "service_events_total",
			Help:        "Services added to or removed from the registry.",
			ConstLabels: labels,
		}, []string{"tag", "event"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "subscription_deliveries_total",
			Help:        "Pending one-shot subscriptions resolved by a store.",
			ConstLabels: labels,
		}, []string{"tag"}),
		liveTokens: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "live_tokens",
			Help:        "Tokens whose node is still alive.",
			ConstLabels: labels,
		}, func() float64 {
			if c := wc.Value(); c != nil {
				return float64(c.TokenCount())
			}
			return 0
		}),
		pending: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "pending_subscriptions",
			Help:        "Tags with a subscriber waiting for the first store.",
			ConstLabels: labels,
		}, func() float64 {
			if c := wc.Value(); c != nil {
				return float64(c.PendingCount())
			}
			return 0
		}),
	}

	m.registerer = reg
	for _, collector := range []prometheus.Collector{
		m.tokensIssued, m.tokensReleased, m.serviceEvents, m.deliveries, m.liveTokens, m.pending,
	} {
		if err := reg.Register(collector); err != nil {
			m.unregister()
			return nil, err
		}
		m.registered = append(m.registered, collector)
	}
	return m, nil
}

func (m *metrics) unregister() {
	if m == nil {
		return
	}
	for _, collector := range m.registered {
		m.registerer.Unregister(collector)
	}
	m.registered = nil
}

func (m *metrics) tokenIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

func (m *metrics) tokenReleased() {
	if m == nil {
		return
	}
	m.tokensReleased.Inc()
}

func (m *metrics) serviceEvent(ev ServiceEvent) {
	if m == nil {
		return
	}
	m.serviceEvents.WithLabelValues(ev.Tag, ev.Kind.String()).Inc()
}

func (m *metrics) delivered(tag string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(tag).Inc()
}
