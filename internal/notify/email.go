// internal/notify/email.go
package notify

import (
	"context"

	"recruitflow/internal/common/logger"
	"recruitflow/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"
)

// SESService is the SES surface the sender needs. Defined here for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESEmailSender delivers messages through Amazon SES. When the channel is
// disabled or no client is wired, sends are simulated: the result reports a
// generated message ID and the message is never transmitted.
type SESEmailSender struct {
	client    SESService
	fromEmail string
	enabled   bool
	logger    logger.Logger
}

func NewSESEmailSender(client SESService, fromEmail string, enabled bool, log logger.Logger) *SESEmailSender {
	return &SESEmailSender{
		client:    client,
		fromEmail: fromEmail,
		enabled:   enabled,
		logger:    log.WithFields(map[string]interface{}{"channel": models.ChannelEmail}),
	}
}

func (s *SESEmailSender) Send(ctx context.Context, to, subject, body string) models.SendResult {
	if !s.enabled || s.client == nil {
		s.logger.Info("email send simulated", map[string]interface{}{"to": to})
		return models.SendResult{
			Channel:   models.ChannelEmail,
			Success:   true,
			Simulated: true,
			MessageID: uuid.New().String(),
		}
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.fromEmail),
	})
	if err != nil {
		s.logger.Error("email send failed", map[string]interface{}{
			"error": err,
			"to":    to,
		})
		return models.SendResult{
			Channel: models.ChannelEmail,
			Success: false,
			Error:   err.Error(),
		}
	}

	messageID := ""
	if out.MessageId != nil {
		messageID = *out.MessageId
	}
	return models.SendResult{
		Channel:   models.ChannelEmail,
		Success:   true,
		MessageID: messageID,
	}
}
