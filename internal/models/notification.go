// internal/models/notification.go
package models

// Send statuses
const (
	SendStatusSent      = "sent"
	SendStatusFailed    = "failed"
	SendStatusSimulated = "simulated"
)

// SendResult reports the outcome of one outbound message on one channel.
// A failed or simulated send is data, not an error: delivery problems must
// never propagate to the pipeline operation that triggered them.
type SendResult struct {
	Channel   string `json:"channel"` // "email" or "whatsapp"
	Success   bool   `json:"success"`
	Simulated bool   `json:"simulated,omitempty"` // channel not configured, send was a no-op
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MessageTemplate is a renderable subject/body pair keyed by notification type.
type MessageTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
