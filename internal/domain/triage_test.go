package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTriageScore(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		severity Severity
		impact   Impact
		age      time.Duration
		want     int
	}{
		{"fresh low none", SeverityLow, ImpactNone, time.Hour, 15},
		{"fresh critical critical", SeverityCritical, ImpactCritical, time.Hour, 70},
		{"high impact capped at critical impact", SeverityMedium, ImpactHigh, time.Hour, 50},
		{"age over 8h adds 10", SeverityLow, ImpactLow, 9 * time.Hour, 30},
		{"age over 24h adds 20 not 30", SeverityLow, ImpactLow, 30 * time.Hour, 40},
		{"age exactly 8h adds nothing", SeverityLow, ImpactLow, 8 * time.Hour, 20},
		{"age exactly 24h stays in lower bracket", SeverityLow, ImpactLow, 24 * time.Hour, 30},
		{"aged critical critical", SeverityCritical, ImpactCritical, 30 * time.Hour, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TriageScore(tt.severity, tt.impact, now.Add(-tt.age), now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTriageScoreMonotonicity(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("worst case dominates best case", func(t *testing.T) {
		worst := TriageScore(SeverityCritical, ImpactCritical, now.Add(-30*time.Hour), now)
		best := TriageScore(SeverityLow, ImpactLow, now.Add(-time.Hour), now)
		assert.GreaterOrEqual(t, worst, best)
	})

	t.Run("raising severity never lowers the score", func(t *testing.T) {
		order := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
		for i := 1; i < len(order); i++ {
			lower := TriageScore(order[i-1], ImpactMedium, now.Add(-time.Hour), now)
			higher := TriageScore(order[i], ImpactMedium, now.Add(-time.Hour), now)
			assert.GreaterOrEqual(t, higher, lower)
		}
	})

	t.Run("raising impact never lowers the score", func(t *testing.T) {
		order := []Impact{ImpactNone, ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical}
		for i := 1; i < len(order); i++ {
			lower := TriageScore(SeverityMedium, order[i-1], now.Add(-time.Hour), now)
			higher := TriageScore(SeverityMedium, order[i], now.Add(-time.Hour), now)
			assert.GreaterOrEqual(t, higher, lower)
		}
	})
}

func TestImpactPointsCapped(t *testing.T) {
	assert.Equal(t, ImpactPoints(ImpactHigh), ImpactPoints(ImpactCritical))
	assert.Equal(t, 30, ImpactPoints(ImpactCritical))
}
