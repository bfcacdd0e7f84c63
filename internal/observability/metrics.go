// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the login and registration counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics contains custom Prometheus metrics for RoleGate.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	LoginsTotal                 *prometheus.CounterVec
	RegistrationsTotal          *prometheus.CounterVec
	AuthorizationDecisionsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers custom RoleGate metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_registrations_total",
				Help: "Total number of registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		AuthorizationDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_authorization_decisions_total",
				Help: "Total number of resource authorization decisions",
			},
			[]string{"resource", "decision"},
		),
	}

	reg.MustRegister(m.LoginsTotal)
	reg.MustRegister(m.RegistrationsTotal)
	reg.MustRegister(m.AuthorizationDecisionsTotal)

	return m
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// RecordRegistration counts a registration attempt.
func (m *Metrics) RecordRegistration(outcome string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// RecordAuthorization counts a gate decision for resource.
func (m *Metrics) RecordAuthorization(resource, decision string) {
	if m == nil {
		return
	}
	m.AuthorizationDecisionsTotal.WithLabelValues(resource, decision).Inc()
}
