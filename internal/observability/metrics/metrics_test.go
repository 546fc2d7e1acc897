package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLinkOutcomesAreCounted(t *testing.T) {
	m := New(NewRegistry())

	m.RecordLinkOutcome(LinkCreated)
	m.RecordLinkOutcome(LinkExisting)
	m.RecordLinkOutcome(LinkExisting)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.linkOutcomes.WithLabelValues(LinkCreated)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.linkOutcomes.WithLabelValues(LinkExisting)))
}

func TestEmptyLabelsNormalized(t *testing.T) {
	m := New(nil)
	m.RecordCampaignCreated("  ")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.campaignsCreated.WithLabelValues("unknown")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCompletion("disc")
		m.RecordInvitationReset()
		m.RecordCodeCollision()
	})
}
