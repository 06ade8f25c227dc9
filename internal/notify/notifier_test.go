// internal/notify/notifier_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockWhatsAppService struct {
	SendTextFunc func(ctx context.Context, to, body string) (string, error)
}

func (m *MockWhatsAppService) SendText(ctx context.Context, to, body string) (string, error) {
	return m.SendTextFunc(ctx, to, body)
}

type recordingEmailSender struct {
	calls   []sentMessage
	failure bool
}

type sentMessage struct {
	to      string
	subject string
	body    string
}

func (r *recordingEmailSender) Send(_ context.Context, to, subject, body string) models.SendResult {
	r.calls = append(r.calls, sentMessage{to: to, subject: subject, body: body})
	if r.failure {
		return models.SendResult{Channel: models.ChannelEmail, Success: false, Error: "ses unavailable"}
	}
	return models.SendResult{Channel: models.ChannelEmail, Success: true, MessageID: "msg-1"}
}

type recordingWhatsAppSender struct {
	calls   []sentMessage
	failure bool
}

func (r *recordingWhatsAppSender) Send(_ context.Context, to, message string) models.SendResult {
	r.calls = append(r.calls, sentMessage{to: to, body: message})
	if r.failure {
		return models.SendResult{Channel: models.ChannelWhatsApp, Success: false, Error: "graph error"}
	}
	return models.SendResult{Channel: models.ChannelWhatsApp, Success: true, MessageID: "wamid-1"}
}

func testCandidate() *models.Candidate {
	return &models.Candidate{
		ID:     "cand-1",
		Name:   "Ana Torres",
		Email:  "ana@example.com",
		Phone:  "+5215512345678",
		Status: models.StatusScreening,
	}
}

func TestStatusChanged_TransitionMatrix(t *testing.T) {
	tests := []struct {
		name      string
		from      models.Status
		to        models.Status
		wantSends int
	}{
		{"applied to screening is silent", models.StatusApplied, models.StatusScreening, 0},
		{"screening to interview notifies", models.StatusScreening, models.StatusInterview, 1},
		{"interview to evaluation notifies", models.StatusInterview, models.StatusEvaluation, 1},
		{"evaluation to offer notifies", models.StatusEvaluation, models.StatusOffer, 1},
		{"offer to hired is silent", models.StatusOffer, models.StatusHired, 0},
		{"anything to rejected notifies", models.StatusApplied, models.StatusRejected, 1},
		{"backwards into interview still notifies", models.StatusOffer, models.StatusInterview, 1},
		{"same status is a no-op", models.StatusInterview, models.StatusInterview, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &recordingEmailSender{}
			n := NewNotifier(email, &recordingWhatsAppSender{}, logger.NewTestLogger(t))

			n.StatusChanged(context.Background(), testCandidate(), "Backend Engineer", tt.from, tt.to)

			assert.Len(t, email.calls, tt.wantSends)
		})
	}
}

func TestStatusChanged_UsesInterviewTemplate(t *testing.T) {
	email := &recordingEmailSender{}
	n := NewNotifier(email, &recordingWhatsAppSender{}, logger.NewTestLogger(t))

	n.StatusChanged(context.Background(), testCandidate(), "Backend Engineer", models.StatusScreening, models.StatusInterview)

	require.Len(t, email.calls, 1)
	assert.Equal(t, "ana@example.com", email.calls[0].to)
	assert.Contains(t, email.calls[0].subject, "Interview invitation")
	assert.Contains(t, email.calls[0].subject, "Backend Engineer")
	assert.Contains(t, email.calls[0].body, "Ana Torres")
	assert.NotContains(t, email.calls[0].body, "{{")
}

func TestStatusChanged_DeliveryFailureSwallowed(t *testing.T) {
	email := &recordingEmailSender{failure: true}
	n := NewNotifier(email, &recordingWhatsAppSender{}, logger.NewTestLogger(t))

	// Must not panic or surface anything; the transition already happened.
	n.StatusChanged(context.Background(), testCandidate(), "Backend Engineer", models.StatusScreening, models.StatusRejected)

	assert.Len(t, email.calls, 1)
}

func TestSendAdHoc_Channels(t *testing.T) {
	tests := []struct {
		name          string
		channel       string
		wantChannels  []string
		wantEmails    int
		wantWhatsApps int
	}{
		{"email only", models.ChannelEmail, []string{models.ChannelEmail}, 1, 0},
		{"whatsapp only", models.ChannelWhatsApp, []string{models.ChannelWhatsApp}, 0, 1},
		{"both channels in order", models.ChannelBoth, []string{models.ChannelEmail, models.ChannelWhatsApp}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &recordingEmailSender{}
			whatsapp := &recordingWhatsAppSender{}
			n := NewNotifier(email, whatsapp, logger.NewTestLogger(t))

			results, err := n.SendAdHoc(context.Background(), testCandidate(), "Please bring your portfolio.", tt.channel)
			require.NoError(t, err)

			var channels []string
			for _, r := range results {
				channels = append(channels, r.Channel)
				assert.True(t, r.Success)
			}
			assert.Equal(t, tt.wantChannels, channels)
			assert.Len(t, email.calls, tt.wantEmails)
			assert.Len(t, whatsapp.calls, tt.wantWhatsApps)
		})
	}
}

func TestSendAdHoc_InvalidChannel(t *testing.T) {
	n := NewNotifier(&recordingEmailSender{}, &recordingWhatsAppSender{}, logger.NewTestLogger(t))

	results, err := n.SendAdHoc(context.Background(), testCandidate(), "hello", "carrier-pigeon")

	assert.Nil(t, results)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidChannel, apperrors.CodeOf(err))
}

func TestSendAdHoc_PartialFailureReportsBoth(t *testing.T) {
	email := &recordingEmailSender{}
	whatsapp := &recordingWhatsAppSender{failure: true}
	n := NewNotifier(email, whatsapp, logger.NewTestLogger(t))

	results, err := n.SendAdHoc(context.Background(), testCandidate(), "hello", models.ChannelBoth)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "graph error", results[1].Error)
}

func TestSESEmailSender_Simulated(t *testing.T) {
	sender := NewSESEmailSender(nil, "from@example.com", false, logger.NewTestLogger(t))

	result := sender.Send(context.Background(), "to@example.com", "subject", "body")

	assert.True(t, result.Success)
	assert.True(t, result.Simulated)
	assert.NotEmpty(t, result.MessageID)
}

func TestSESEmailSender_SendsThroughSES(t *testing.T) {
	mockSES := &MockSESService{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, "to@example.com", params.Destination.ToAddresses[0])
			assert.Equal(t, "from@example.com", *params.Source)
			id := "ses-msg-1"
			return &ses.SendEmailOutput{MessageId: &id}, nil
		},
	}
	sender := NewSESEmailSender(mockSES, "from@example.com", true, logger.NewTestLogger(t))

	result := sender.Send(context.Background(), "to@example.com", "subject", "body")

	assert.True(t, result.Success)
	assert.False(t, result.Simulated)
	assert.Equal(t, "ses-msg-1", result.MessageID)
}

func TestSESEmailSender_Failure(t *testing.T) {
	mockSES := &MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	sender := NewSESEmailSender(mockSES, "from@example.com", true, logger.NewTestLogger(t))

	result := sender.Send(context.Background(), "to@example.com", "subject", "body")

	assert.False(t, result.Success)
	assert.Equal(t, "throttled", result.Error)
}

func TestGraphWhatsAppSender_Simulated(t *testing.T) {
	sender := NewGraphWhatsAppSender(nil, false, logger.NewTestLogger(t))

	result := sender.Send(context.Background(), "+521555", "hola")

	assert.True(t, result.Success)
	assert.True(t, result.Simulated)
}

func TestGraphWhatsAppSender_Success(t *testing.T) {
	mock := &MockWhatsAppService{
		SendTextFunc: func(_ context.Context, to, body string) (string, error) {
			assert.Equal(t, "+521555", to)
			assert.Equal(t, "hola", body)
			return "wamid.abc", nil
		},
	}
	sender := NewGraphWhatsAppSender(mock, true, logger.NewTestLogger(t))

	result := sender.Send(context.Background(), "+521555", "hola")

	assert.True(t, result.Success)
	assert.Equal(t, "wamid.abc", result.MessageID)
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("Hi {{name}}, about {{vacancy}}: {{missing}}.", map[string]interface{}{
		"name":    "Ana",
		"vacancy": "Backend Engineer",
	})
	assert.Equal(t, "Hi Ana, about Backend Engineer: .", out)
}
