package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	guardOutcomes  *prometheus.CounterVec
	landingResults *prometheus.CounterVec
}

// NewMetrics creates collectors and registers them on reg. A nil reg uses
// prometheus.DefaultRegisterer. Collectors that are already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		guardOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "route_guard_outcomes_total",
			Help: "Route guard decisions by outcome.",
		}, []string{"outcome"}),
		landingResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "login_landing_resolutions_total",
			Help: "Post-login landing resolutions by result.",
		}, []string{"result"}),
	}

	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, m.latency); err != nil {
		return nil, err
	}
	if m.errors, err = register(reg, m.errors); err != nil {
		return nil, err
	}
	if m.guardOutcomes, err = register(reg, m.guardOutcomes); err != nil {
		return nil, err
	}
	if m.landingResults, err = register(reg, m.landingResults); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordGuardOutcome counts a route guard decision.
func (m *Metrics) RecordGuardOutcome(outcome string) {
	if m == nil {
		return
	}
	m.guardOutcomes.WithLabelValues(outcome).Inc()
}

// RecordLandingResult counts a landing resolution.
func (m *Metrics) RecordLandingResult(result string) {
	if m == nil {
		return
	}
	m.landingResults.WithLabelValues(result).Inc()
}
