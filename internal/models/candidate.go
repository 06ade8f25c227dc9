// internal/models/candidate.go
package models

// Status is a candidate's current stage in the hiring workflow.
type Status string

const (
	StatusApplied    Status = "applied"
	StatusScreening  Status = "screening"
	StatusInterview  Status = "interview"
	StatusEvaluation Status = "evaluation"
	StatusOffer      Status = "offer"
	StatusHired      Status = "hired"
	StatusRejected   Status = "rejected"
)

// Valid reports whether s is one of the known pipeline stages.
// Any transition between valid stages is legal; monotonicity is not enforced.
func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusScreening, StatusInterview, StatusEvaluation,
		StatusOffer, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Classification is the coarse bucket derived from a numeric AI score.
type Classification string

const (
	ClassificationIdeal     Classification = "ideal"
	ClassificationPotencial Classification = "potencial"
	ClassificationNoPerfila Classification = "no perfila"
)

// Communication channels
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
	ChannelBoth     = "both"
)

// Communication is one entry in a candidate's append-only message log.
type Communication struct {
	Type    string `json:"type"` // "email" or "whatsapp"
	Message string `json:"message"`
	SentAt  string `json:"sentAt"` // ISO 8601
}

type Candidate struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone,omitempty"`
	VacancyID        string          `json:"vacancyId"`
	CVText           string          `json:"cvText,omitempty"`
	AIScore          *int            `json:"aiScore,omitempty"` // nil until first scored
	AIClassification Classification  `json:"aiClassification,omitempty"`
	AIJustification  string          `json:"aiJustification,omitempty"`
	Status           Status          `json:"status"`
	Communications   []Communication `json:"communications,omitempty"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

// Evaluation carries the result of one scoring pass, persisted as a unit so
// the stored classification is never stale relative to the stored score.
type Evaluation struct {
	Score          int            `json:"score"`
	Classification Classification `json:"classification"`
	Justification  string         `json:"justification"`
}
