package compat

// Health labels.
const (
	LabelExcellent      = "Excellent"
	LabelGood           = "Good"
	LabelFair           = "Fair"
	LabelNeedsAttention = "Needs Attention"
)

// Tier drives the colour a health score is shown with.
type Tier string

const (
	TierGood Tier = "good"
	TierOk   Tier = "ok"
	TierWarn Tier = "warn"
	TierBad  Tier = "bad"
)

// Score weights.
const (
	missingDependencyPenalty = 10
	conflictPenalty          = 15
	resourceHeavyPenalty     = 3
	graphicsIntensivePenalty = 2
	optimizationBonus        = 5
)

// AnalysisSummary holds the counts a modpack analysis feeds into Score.
// ConflictCount only covers conflicts of severity error or with no severity.
type AnalysisSummary struct {
	MissingDependencyCount int `json:"missingDependencyCount"`
	ConflictCount          int `json:"conflictCount"`
	ResourceHeavyCount     int `json:"resourceHeavyCount"`
	GraphicsIntensiveCount int `json:"graphicsIntensiveCount"`
	OptimizationModCount   int `json:"optimizationModCount"`
}

// HealthScore is a 0-100 score with its label and tier.
type HealthScore struct {
	Score int    `json:"score"`
	Label string `json:"label"`
	Tier  Tier   `json:"tier"`
}

// Score computes the health of a modpack from its analysis counts. It starts
// at 100, subtracts penalties, adds optimization bonuses and clamps to [0,100].
func Score(summary AnalysisSummary) HealthScore {
	score := 100 -
		missingDependencyPenalty*boundedCount(summary.MissingDependencyCount) -
		conflictPenalty*boundedCount(summary.ConflictCount) -
		resourceHeavyPenalty*boundedCount(summary.ResourceHeavyCount) -
		graphicsIntensivePenalty*boundedCount(summary.GraphicsIntensiveCount) +
		optimizationBonus*boundedCount(summary.OptimizationModCount)
	score = clamp(score, 0, 100)

	label, tier := Grade(score)
	return HealthScore{Score: score, Label: label, Tier: tier}
}

// Grade maps a score to its label and tier. Lower bounds are inclusive.
func Grade(score int) (string, Tier) {
	switch {
	case score >= 80:
		return LabelExcellent, TierGood
	case score >= 60:
		return LabelGood, TierOk
	case score >= 40:
		return LabelFair, TierWarn
	default:
		return LabelNeedsAttention, TierBad
	}
}

// maxCount caps each count so the weighted sum cannot overflow.
const maxCount = 1 << 20

func boundedCount(v int) int {
	return clamp(v, 0, maxCount)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
