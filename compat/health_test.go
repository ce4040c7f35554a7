package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		summary  AnalysisSummary
		expected HealthScore
	}{
		{
			name:     "empty summary is perfect",
			summary:  AnalysisSummary{},
			expected: HealthScore{Score: 100, Label: LabelExcellent, Tier: TierGood},
		},
		{
			name: "mixed",
			summary: AnalysisSummary{
				MissingDependencyCount: 2,
				ConflictCount:          1,
				ResourceHeavyCount:     3,
				GraphicsIntensiveCount: 2,
				OptimizationModCount:   4,
			},
			expected: HealthScore{Score: 72, Label: LabelGood, Tier: TierOk},
		},
		{
			name:     "floor",
			summary:  AnalysisSummary{MissingDependencyCount: 100},
			expected: HealthScore{Score: 0, Label: LabelNeedsAttention, Tier: TierBad},
		},
		{
			name:     "ceiling",
			summary:  AnalysisSummary{OptimizationModCount: 50, ResourceHeavyCount: 1},
			expected: HealthScore{Score: 100, Label: LabelExcellent, Tier: TierGood},
		},
		{
			name:     "negative counts are ignored",
			summary:  AnalysisSummary{ConflictCount: -3, OptimizationModCount: -1},
			expected: HealthScore{Score: 100, Label: LabelExcellent, Tier: TierGood},
		},
		{
			name:     "huge counts do not overflow",
			summary:  AnalysisSummary{ConflictCount: int(^uint(0) >> 1)},
			expected: HealthScore{Score: 0, Label: LabelNeedsAttention, Tier: TierBad},
		},
		{
			name:     "fair",
			summary:  AnalysisSummary{ConflictCount: 3, GraphicsIntensiveCount: 1},
			expected: HealthScore{Score: 53, Label: LabelFair, Tier: TierWarn},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.summary))
		})
	}
}

func TestScoreConflictMonotonic(t *testing.T) {
	prev := Score(AnalysisSummary{}).Score
	for conflicts := 1; conflicts <= 10; conflicts++ {
		got := Score(AnalysisSummary{ConflictCount: conflicts}).Score
		if prev >= 15 {
			assert.Equal(t, prev-15, got, "conflicts=%d", conflicts)
		} else {
			assert.Equal(t, 0, got, "conflicts=%d", conflicts)
		}
		prev = got
	}
}

func TestGradeBoundaries(t *testing.T) {
	tests := []struct {
		score int
		label string
		tier  Tier
	}{
		{100, LabelExcellent, TierGood},
		{80, LabelExcellent, TierGood},
		{79, LabelGood, TierOk},
		{60, LabelGood, TierOk},
		{59, LabelFair, TierWarn},
		{40, LabelFair, TierWarn},
		{39, LabelNeedsAttention, TierBad},
		{0, LabelNeedsAttention, TierBad},
	}

	for _, tt := range tests {
		label, tier := Grade(tt.score)
		assert.Equal(t, tt.label, label, "score=%d", tt.score)
		assert.Equal(t, tt.tier, tier, "score=%d", tt.score)
	}
}
