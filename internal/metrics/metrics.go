// Package metrics exposes Prometheus collectors fed by session lifecycle hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the engine metrics under its own registry.
type Collector struct {
	registry *prometheus.Registry

	StepEntries     *prometheus.CounterVec
	Entries         *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	Navigations     *prometheus.CounterVec
	Resets          prometheus.Counter
	ResponseLatency prometheus.Histogram
}

// New creates a Collector and registers it with a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		StepEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genie_step_entries_total",
				Help: "Total number of step entries",
			},
			[]string{"step_id"},
		),
		Entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genie_transcript_entries_total",
				Help: "Total number of transcript entries appended",
			},
			[]string{"author"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genie_actions_rejected_total",
				Help: "Total number of rejected actions",
			},
			[]string{"reason"},
		),
		Navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genie_navigations_total",
				Help: "Total number of navigation signals",
			},
			[]string{"view"},
		),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genie_session_resets_total",
			Help: "Total number of session resets",
		}),
		ResponseLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "genie_response_latency_seconds",
			Help:    "Simulated latency of delivered assistant responses",
			Buckets: []float64{0, 0.25, 0.5, 1, 1.5, 2, 3, 5},
		}),
	}
	c.registry.MustRegister(c.StepEntries, c.Entries, c.Rejections, c.Navigations, c.Resets, c.ResponseLatency)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks recording into the collector, then calling next.
func (c *Collector) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			c.StepEntries.WithLabelValues(e.StepID).Inc()
			if next.OnStepEnter != nil {
				next.OnStepEnter(ctx, e)
			}
		},
		OnEntryAppended: func(ctx context.Context, e *domain.EntryEvent) {
			c.Entries.WithLabelValues(string(e.Entry.Author)).Inc()
			if e.Entry.Author == domain.AuthorAssistant {
				c.ResponseLatency.Observe(e.Latency.Seconds())
			}
			if next.OnEntryAppended != nil {
				next.OnEntryAppended(ctx, e)
			}
		},
		OnActionRejected: func(ctx context.Context, e *domain.RejectEvent) {
			c.Rejections.WithLabelValues(e.Reason).Inc()
			if next.OnActionRejected != nil {
				next.OnActionRejected(ctx, e)
			}
		},
		OnNavigate: func(ctx context.Context, e *domain.NavigateEvent) {
			c.Navigations.WithLabelValues(e.Navigation.View).Inc()
			if next.OnNavigate != nil {
				next.OnNavigate(ctx, e)
			}
		},
		OnReset: func(ctx context.Context, e *domain.EventBase) {
			c.Resets.Inc()
			if next.OnReset != nil {
				next.OnReset(ctx, e)
			}
		},
	}
}
