// internal/scoring/classifier.go
package scoring

import "recruitflow/internal/models"

// Classify buckets a 0-100 score under the given cut points, evaluated in
// descending order. Scores outside [0,100] are compared as-is, not clamped;
// the provider bounds its output before scores reach this point.
//
// Both the potential and review tiers map to "potencial". The review cut
// point is kept so stored threshold sets keep their shape until the review
// tier becomes its own label.
func Classify(score int, t models.Thresholds) models.Classification {
	switch {
	case score >= t.Ideal:
		return models.ClassificationIdeal
	case score >= t.Potential:
		return models.ClassificationPotencial
	case score >= t.Review:
		return models.ClassificationPotencial
	default:
		return models.ClassificationNoPerfila
	}
}

// EffectiveThresholds resolves the threshold set for one classification:
// vacancy cut points win outright, then the agent's, then the hard default.
// A priority chain, not a merge: a present source is taken whole.
func EffectiveThresholds(vacancy, agent *models.Thresholds) models.Thresholds {
	if vacancy != nil {
		return *vacancy
	}
	if agent != nil {
		return *agent
	}
	return models.DefaultThresholds()
}
