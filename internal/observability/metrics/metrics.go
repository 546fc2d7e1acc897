package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Linking outcomes recorded by the roster linker.
const (
	LinkCreated  = "created"
	LinkExisting = "existing"
	LinkSkipped  = "skipped"
	LinkDeferred = "deferred"
)

// Metrics groups the engine counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	campaignsCreated      *prometheus.CounterVec
	campaignTransitions   *prometheus.CounterVec
	invitationTransitions *prometheus.CounterVec
	invitationResets      prometheus.Counter
	completions           *prometheus.CounterVec
	linkOutcomes          *prometheus.CounterVec
	codeCollisions        prometheus.Counter
}

func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		campaignsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "campaigns_created_total",
			Help:      "Campaigns created, by kind.",
		}, []string{"kind"}),
		campaignTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "campaign_transitions_total",
			Help:      "Campaign status transitions, by target status.",
		}, []string{"status"}),
		invitationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "invitation_transitions_total",
			Help:      "Invitation status transitions, by target status.",
		}, []string{"status"}),
		invitationResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "invitation_resets_total",
			Help:      "Administrator invitation resets.",
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "completions_total",
			Help:      "Recorded assessment completions, by tool.",
		}, []string{"tool_id"}),
		linkOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "roster_link_outcomes_total",
			Help:      "Roster linking outcomes.",
		}, []string{"outcome"}),
		codeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "code_collisions_total",
			Help:      "Generated codes rejected because they already existed.",
		}),
	}

	if registry != nil {
		registry.MustRegister(
			m.campaignsCreated,
			m.campaignTransitions,
			m.invitationTransitions,
			m.invitationResets,
			m.completions,
			m.linkOutcomes,
			m.codeCollisions,
		)
	}
	return m
}

func (m *Metrics) RecordCampaignCreated(kind string) {
	if m == nil {
		return
	}
	m.campaignsCreated.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) RecordCampaignTransition(status string) {
	if m == nil {
		return
	}
	m.campaignTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *Metrics) RecordInvitationTransition(status string) {
	if m == nil {
		return
	}
	m.invitationTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *Metrics) RecordInvitationReset() {
	if m == nil {
		return
	}
	m.invitationResets.Inc()
}

func (m *Metrics) RecordCompletion(toolID string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(normalizeLabel(toolID)).Inc()
}

func (m *Metrics) RecordLinkOutcome(outcome string) {
	if m == nil {
		return
	}
	m.linkOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) RecordCodeCollision() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
