// internal/models/agent.go
package models

// AIAgent is a reusable evaluation profile: a system prompt plus optional
// threshold overrides. Vacancy-level thresholds always win over the agent's.
type AIAgent struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	SystemPrompt string      `json:"systemPrompt"`
	Thresholds   *Thresholds `json:"thresholds,omitempty"`
	UsageCount   int         `json:"usageCount"`
	CreatedAt    string      `json:"createdAt"`
	UpdatedAt    string      `json:"updatedAt"`
}
