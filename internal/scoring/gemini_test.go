// internal/scoring/gemini_test.go
package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"recruitflow/internal/common/logger"
	"recruitflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testRequest() ScoreRequest {
	return ScoreRequest{
		CVText:         "Five years of Go and PostgreSQL.",
		JobDescription: "Backend engineer for the hiring platform.",
		RequiredSkills: []string{"Go", "PostgreSQL"},
	}
}

func TestGeminiProvider_Score_Success(t *testing.T) {
	gen := &stubGenerator{
		response: `{"score": 84, "summary": "Strong match.", "strengths": ["Go depth"], "concerns": ["No cloud experience"]}`,
	}
	p := NewGeminiProvider(gen, time.Second, logger.NewTestLogger(t))

	result := p.Score(context.Background(), testRequest())

	assert.False(t, result.Degraded)
	assert.Equal(t, 84, result.Score)
	assert.Equal(t, "Strong match.", result.Summary)
	assert.Equal(t, []string{"Go depth"}, result.Strengths)
	assert.Equal(t, []string{"No cloud experience"}, result.Concerns)
}

func TestGeminiProvider_Score_FencedJSON(t *testing.T) {
	gen := &stubGenerator{
		response: "```json\n{\"score\": 61, \"summary\": \"Partial match.\"}\n```",
	}
	p := NewGeminiProvider(gen, time.Second, logger.NewTestLogger(t))

	result := p.Score(context.Background(), testRequest())

	assert.False(t, result.Degraded)
	assert.Equal(t, 61, result.Score)
}

func TestGeminiProvider_Score_ClampsOutOfRange(t *testing.T) {
	gen := &stubGenerator{response: `{"score": 130, "summary": "Over-enthusiastic."}`}
	p := NewGeminiProvider(gen, time.Second, logger.NewTestLogger(t))

	result := p.Score(context.Background(), testRequest())

	assert.Equal(t, 100, result.Score)
	assert.False(t, result.Degraded)
}

func TestGeminiProvider_Score_GeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	p := NewGeminiProvider(gen, time.Second, logger.NewTestLogger(t))

	result := p.Score(context.Background(), testRequest())

	assert.True(t, result.Degraded)
	assert.Equal(t, DegradedScore, result.Score)
	assert.NotEmpty(t, result.Concerns)
	assert.Equal(t, "rate limited", result.DegradedReason)
}

func TestGeminiProvider_Score_MalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I think this candidate is great!"},
		{"missing score", `{"summary": "no score here"}`},
		{"non-numeric score", `{"score": "excellent"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{response: tt.response}
			p := NewGeminiProvider(gen, time.Second, logger.NewTestLogger(t))

			result := p.Score(context.Background(), testRequest())

			assert.True(t, result.Degraded)
			assert.Equal(t, DegradedScore, result.Score)
			assert.Equal(t, "malformed model response", result.DegradedReason)
		})
	}
}

func TestGeminiProvider_Score_Unconfigured(t *testing.T) {
	p := NewUnconfiguredProvider(logger.NewTestLogger(t))

	require.False(t, p.Available())
	result := p.Score(context.Background(), testRequest())

	assert.True(t, result.Degraded)
	assert.Equal(t, DegradedScore, result.Score)
}

func TestBuildScorePrompt_AgentInstructionVerbatim(t *testing.T) {
	req := testRequest()
	req.Agent = &models.AIAgent{
		ID:           "agent-1",
		SystemPrompt: "Evaluate only for fintech roles.",
	}

	prompt := buildScorePrompt(req)

	assert.True(t, strings.HasPrefix(prompt, "Evaluate only for fintech roles."))
	assert.NotContains(t, prompt, genericInstruction)
	assert.Contains(t, prompt, "Backend engineer for the hiring platform.")
}

func TestBuildScorePrompt_GenericFallback(t *testing.T) {
	req := testRequest()
	req.Agent = &models.AIAgent{ID: "agent-1", SystemPrompt: "   "}

	prompt := buildScorePrompt(req)

	assert.Contains(t, prompt, genericInstruction)
	assert.Contains(t, prompt, "- Go\n- PostgreSQL")
}
