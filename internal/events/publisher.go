// internal/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recruitflow/internal/common/logger"
	"recruitflow/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// SNSService is the SNS surface the publisher needs. Defined here for
// mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// CandidateHiredEvent is published when a candidate reaches the hired
// status, for downstream systems (onboarding, payroll) to pick up.
type CandidateHiredEvent struct {
	EventID     string `json:"eventId"`
	CandidateID string `json:"candidateId"`
	VacancyID   string `json:"vacancyId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	HiredAt     string `json:"hiredAt"`
}

// Publisher pushes hiring events to an SNS topic. When disabled it is a
// logged no-op.
type Publisher struct {
	snsClient SNSService
	topicARN  string
	enabled   bool
	logger    logger.Logger
}

func NewPublisher(snsClient SNSService, topicARN string, enabled bool, log logger.Logger) *Publisher {
	return &Publisher{
		snsClient: snsClient,
		topicARN:  topicARN,
		enabled:   enabled,
		logger:    log.WithFields(map[string]interface{}{"component": "event-publisher"}),
	}
}

// PublishHired emits a CandidateHiredEvent for the candidate.
func (p *Publisher) PublishHired(ctx context.Context, candidate *models.Candidate) error {
	event := CandidateHiredEvent{
		EventID:     uuid.New().String(),
		CandidateID: candidate.ID,
		VacancyID:   candidate.VacancyID,
		Name:        candidate.Name,
		Email:       candidate.Email,
		HiredAt:     time.Now().UTC().Format(time.RFC3339),
	}

	if !p.enabled || p.snsClient == nil {
		p.logger.Info("hired event publishing disabled, skipping", map[string]interface{}{
			"candidateId": candidate.ID,
		})
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal hired event: %w", err)
	}

	_, err = p.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("candidate.hired"),
	})
	if err != nil {
		return fmt.Errorf("publish hired event: %w", err)
	}

	p.logger.Info("hired event published", map[string]interface{}{
		"candidateId": candidate.ID,
		"eventId":     event.EventID,
	})
	return nil
}
