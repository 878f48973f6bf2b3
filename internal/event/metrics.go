package event

import "github.com/prometheus/client_golang/prometheus"

type eventMetrics struct {
	eventsTotal    *prometheus.CounterVec
	deliveryErrors *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
}

func (e *EventBus) initMetrics(registry prometheus.Registerer) {
	m := &eventMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heirloom_events_published_total",
				Help: "Total events published per type",
			},
			[]string{"type"},
		),
		deliveryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heirloom_event_delivery_errors_total",
				Help: "Events dropped because a subscriber queue was full",
			},
			[]string{"type"},
		),
		subscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "heirloom_event_subscribers",
				Help: "Current subscriber count per event type",
			},
			[]string{"type"},
		),
	}
	registry.MustRegister(m.eventsTotal, m.deliveryErrors, m.subscribers)
	e.metrics = m
}
