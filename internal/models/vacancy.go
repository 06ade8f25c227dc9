// internal/models/vacancy.go
package models

// Thresholds are the cut points that bucket a 0-100 score into a classification.
type Thresholds struct {
	Ideal     int `json:"ideal"`
	Potential int `json:"potential"`
	Review    int `json:"review"`
}

// DefaultThresholds is the hard fallback when neither the vacancy nor its
// agent defines cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{Ideal: 80, Potential: 65, Review: 50}
}

type Vacancy struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	RequiredSkills []string    `json:"requiredSkills,omitempty"`
	Thresholds     *Thresholds `json:"thresholds,omitempty"` // nil falls back to agent, then default
	AIAgentID      string      `json:"aiAgentId,omitempty"`
	Open           bool        `json:"open"`
	CreatedAt      string      `json:"createdAt"`
	UpdatedAt      string      `json:"updatedAt"`
}
