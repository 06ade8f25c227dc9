// internal/notify/notifier.go
package notify

import (
	"context"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/metrics"
	"recruitflow/internal/models"
)

// EmailSender delivers a subject/body pair to one address.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) models.SendResult
}

// WhatsAppSender delivers a text message to one phone number.
type WhatsAppSender interface {
	Send(ctx context.Context, to, message string) models.SendResult
}

// Notifier dispatches outbound messages. It never returns delivery failures
// to callers: a failed send is reflected in the SendResult and logged, and
// status-triggered sends surface nothing at all.
type Notifier struct {
	email    EmailSender
	whatsapp WhatsAppSender
	logger   logger.Logger
}

func NewNotifier(email EmailSender, whatsapp WhatsAppSender, log logger.Logger) *Notifier {
	return &Notifier{
		email:    email,
		whatsapp: whatsapp,
		logger:   log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// StatusChanged dispatches at most one email when a candidate moves into a
// notifiable status. Transitions to any other status, and transitions where
// the status does not change, send nothing. Delivery failures are swallowed:
// the status change has already been persisted and must stand regardless.
func (n *Notifier) StatusChanged(ctx context.Context, candidate *models.Candidate, vacancyTitle string, oldStatus, newStatus models.Status) {
	if oldStatus == newStatus {
		return
	}

	template, exists := statusTemplates[newStatus]
	if !exists {
		return
	}

	data := map[string]interface{}{
		"candidateName": candidate.Name,
		"vacancyTitle":  vacancyTitle,
	}

	subject := renderTemplate(template.Subject, data)
	body := renderTemplate(template.Body, data)

	result := n.email.Send(ctx, candidate.Email, subject, body)
	metrics.NotificationsTotal.WithLabelValues(result.Channel, resultStatus(result)).Inc()

	if !result.Success {
		n.logger.Warn("status notification not delivered", map[string]interface{}{
			"candidateId": candidate.ID,
			"newStatus":   string(newStatus),
			"error":       result.Error,
		})
	}
}

// SendAdHoc dispatches a free-form message over the requested channel or
// channels. It returns one result per attempted channel, failed attempts
// included. Only the channel value itself can produce an error.
func (n *Notifier) SendAdHoc(ctx context.Context, candidate *models.Candidate, message, channel string) ([]models.SendResult, error) {
	var results []models.SendResult

	switch channel {
	case models.ChannelEmail:
		results = append(results, n.email.Send(ctx, candidate.Email, "Message from the recruitment team", message))
	case models.ChannelWhatsApp:
		results = append(results, n.whatsapp.Send(ctx, candidate.Phone, message))
	case models.ChannelBoth:
		results = append(results, n.email.Send(ctx, candidate.Email, "Message from the recruitment team", message))
		results = append(results, n.whatsapp.Send(ctx, candidate.Phone, message))
	default:
		return nil, apperrors.NewInvalidChannel(channel)
	}

	for _, r := range results {
		metrics.NotificationsTotal.WithLabelValues(r.Channel, resultStatus(r)).Inc()
	}
	return results, nil
}

func resultStatus(r models.SendResult) string {
	switch {
	case r.Simulated:
		return models.SendStatusSimulated
	case r.Success:
		return models.SendStatusSent
	default:
		return models.SendStatusFailed
	}
}
