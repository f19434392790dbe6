// Package metrics exposes the dashboard's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values for the login counter.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// IncrementalCounter counts events by label values.
type IncrementalCounter interface {
	Increment(val ...string)
}

// Counter wraps a labelled Prometheus counter.
type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

// Increment adds one to the series for val.
func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// NewCounter registers a counter vector on reg.
func NewCounter(reg prometheus.Registerer, name, help string, labels ...string) *Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)
	reg.MustRegister(vec)

	return &Counter{Name: name, Help: help, vec: vec}
}

// Registry holds the dashboard's collectors.
type Registry struct {
	reg *prometheus.Registry

	Logins         *Counter
	GuardDecisions *Counter
}

// New creates a Registry with its own Prometheus registry, so several
// servers can coexist in one process.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:            reg,
		Logins:         NewCounter(reg, "ledgerdesk_login_total", "Login attempts by outcome.", "outcome"),
		GuardDecisions: NewCounter(reg, "ledgerdesk_guard_decisions_total", "Navigation guard decisions by action.", "action"),
	}
}

// RecordLogin counts a login attempt.
func (r *Registry) RecordLogin(success bool) {
	if r == nil {
		return
	}
	outcome := OutcomeFailure
	if success {
		outcome = OutcomeSuccess
	}
	r.Logins.Increment(outcome)
}

// RecordGuardDecision counts a guard decision.
func (r *Registry) RecordGuardDecision(action string) {
	if r == nil {
		return
	}
	r.GuardDecisions.Increment(action)
}

// Gatherer returns the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
