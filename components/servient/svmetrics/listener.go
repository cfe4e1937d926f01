package svmetrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/servient/svcore"
)

// Listener counts property interactions as prometheus metrics.
//
// Metrics:
//   - thingweb_interactions_total{thing, property, op, subject}
//   - thingweb_payload_bytes{thing, property, op}
type Listener struct {
	registry     *prometheus.Registry
	interactions *prometheus.CounterVec
	payload      *prometheus.HistogramVec
}

// NewListener is an initialization of Listener.
//
// Remarks:
//   - Metrics are registered in the private registry, see Handler().
func NewListener() (*Listener, error) {
	l := &Listener{
		registry: prometheus.NewRegistry(),
		interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "thingweb",
				Name:      "interactions_total",
				Help:      "Total successful property interactions.",
			},
			[]string{"thing", "property", "op", "subject"},
		),
		payload: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "thingweb",
				Name:      "payload_bytes",
				Help:      "Size of the property payloads in bytes.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"thing", "property", "op"},
		),
	}

	for _, c := range []prometheus.Collector{l.interactions, l.payload} {
		if err := l.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// OnReadProperty counts the property read.
func (l *Listener) OnReadProperty(ctx context.Context, i svcore.Interaction) {
	l.record(ctx, "read", i)
}

// OnWriteProperty counts the property write.
func (l *Listener) OnWriteProperty(ctx context.Context, i svcore.Interaction) {
	l.record(ctx, "write", i)
}

// Handler returns the HTTP handler exposing the metrics.
func (l *Listener) Handler() http.Handler {
	return promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry holding the metrics.
func (l *Listener) Registry() *prometheus.Registry {
	return l.registry
}

func (l *Listener) record(ctx context.Context, op string, i svcore.Interaction) {
	subject, ok := bdcore.SubjectFromContext(ctx)
	if !ok || subject == "" {
		subject = "anonymous"
	}

	l.interactions.WithLabelValues(i.Thing, i.Property, op, subject).Inc()
	l.payload.WithLabelValues(i.Thing, i.Property, op).Observe(float64(len(i.Content.Payload)))
}
