// Package metrics holds the Prometheus collectors the server exports on
// /metrics.
//
// Collectors are registered on a private registry rather than the global
// default one, so every server (and every test) starts from zero.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/listing"
	"github.com/sakif/campus-market/internal/model"
)

const namespace = "campus_market"

// Submission outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected" // validation, auth or conflict: the user can fix it
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

type Metrics struct {
	registry *prometheus.Registry

	Submissions    *prometheus.CounterVec
	SubmitDuration *prometheus.HistogramVec
	DialogsOpen    prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_submissions_total",
			Help:      "Listing create calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		SubmitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "listing_submit_duration_seconds",
			Help:      "Time spent in the listing submitter.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		DialogsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dialogs_open",
			Help:      "Create-listing dialogs currently open.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.Submissions,
		m.SubmitDuration,
		m.DialogsOpen,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests that gather directly.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InstrumentSubmitter wraps next so every create call is counted and timed.
// The wrapped submitter's result is returned unchanged.
func (m *Metrics) InstrumentSubmitter(next listing.Submitter) listing.Submitter {
	return listing.SubmitterFunc(func(ctx context.Context, draft model.ListingDraft, credential string) error {
		kind := string(draft.Kind())
		start := time.Now()

		err := next.CreateListing(ctx, draft, credential)

		m.SubmitDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		m.Submissions.WithLabelValues(kind, outcome(err)).Inc()
		return err
	})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrUnauthorized),
		errors.Is(err, apperror.ErrForbidden),
		errors.Is(err, apperror.ErrConflict):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}
