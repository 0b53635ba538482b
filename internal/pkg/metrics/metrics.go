// Package metrics declares the Prometheus collectors of the change-tracking
// subsystem. Collectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons a change tracker stops tracking on its own.
const (
	ReasonAutoOff       = "auto_off"
	ReasonOrderedReadd  = "ordered_readd"
	ReasonDuplicate     = "duplicate_remove"
	ReasonUnhashable    = "unhashable"
	ReasonWholeMutation = "whole_container"
)

var (
	// TrackingDisabled counts trackers that turned themselves off.
	TrackingDisabled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "changeproxy_tracking_disabled_total",
		Help: "Change trackers disabled because deltas stopped paying off",
	}, []string{"reason"})

	// TemplatesSynthesized counts proxy templates built by the factory.
	TemplatesSynthesized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "changeproxy_templates_synthesized_total",
		Help: "Proxy templates built per container kind",
	}, []string{"kind"})

	// TemplateHits counts factory lookups served from the template cache.
	TemplateHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "changeproxy_template_cache_hits_total",
		Help: "Proxy factory lookups answered by a cached template",
	}, []string{"kind"})

	// DelayedLoads counts delayed collection loads by result.
	DelayedLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "changeproxy_delayed_loads_total",
		Help: "Delayed collection loads by result",
	}, []string{"result"})

	// DelayedLoadDuration observes how long delayed loads take.
	DelayedLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "changeproxy_delayed_load_duration_seconds",
		Help:    "Delayed collection load latency",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// TransientSessions counts sessions opened only to serve a detached load.
	TransientSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "changeproxy_transient_sessions_total",
		Help: "Sessions opened to load a detached delayed collection",
	})
)
