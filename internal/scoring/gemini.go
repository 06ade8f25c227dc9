// internal/scoring/gemini.go
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"recruitflow/internal/common/logger"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

const genericInstruction = `You are a senior technical recruiter. Evaluate how well the candidate's CV matches the vacancy. Score strictly: reserve scores above 80 for candidates who cover every required skill with demonstrated experience.`

const promptTemplate = `%s

Vacancy description:
%s

Required skills:
%s

Candidate CV:
%s

Respond with a single JSON object and nothing else:
{"score": <integer 0-100>, "summary": "<two or three sentences>", "strengths": ["..."], "concerns": ["..."]}`

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Generator wraps the Google GenAI client for simple prompt-based calls.
type Generator struct {
	client    *genai.Client
	modelName string
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{client: client, modelName: model}, nil
}

// GenerateContent sends the prompt to Gemini and returns the textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// GeminiProvider adapts a content generator to the Provider contract.
// A nil generator means the integration is not configured; every failure
// collapses into the degraded result instead of an error.
type GeminiProvider struct {
	generator contentGenerator
	timeout   time.Duration
	logger    logger.Logger
}

func NewGeminiProvider(generator contentGenerator, timeout time.Duration, log logger.Logger) *GeminiProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiProvider{
		generator: generator,
		timeout:   timeout,
		logger:    log.WithFields(map[string]interface{}{"component": "scoring"}),
	}
}

// NewUnconfiguredProvider returns a provider that always degrades. Used when
// no API key is present so the rest of the pipeline needs no special casing.
func NewUnconfiguredProvider(log logger.Logger) *GeminiProvider {
	return NewGeminiProvider(nil, 0, log)
}

func (p *GeminiProvider) Available() bool {
	return p.generator != nil
}

func (p *GeminiProvider) Score(ctx context.Context, req ScoreRequest) ScoreResult {
	if p.generator == nil {
		return degradedUnavailable()
	}

	prompt := buildScorePrompt(req)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.generator.GenerateContent(ctx, prompt)
	if err != nil {
		p.logger.Warn("scoring call failed, returning degraded result", map[string]interface{}{
			"error": err.Error(),
		})
		return degradedFailure(err.Error())
	}

	result, err := parseScoreResponse(raw)
	if err != nil {
		p.logger.Warn("scoring response unparseable, returning degraded result", map[string]interface{}{
			"error": err.Error(),
		})
		return degradedFailure("malformed model response")
	}

	return result
}

func buildScorePrompt(req ScoreRequest) string {
	instruction := genericInstruction
	if req.Agent != nil && strings.TrimSpace(req.Agent.SystemPrompt) != "" {
		// Agent prompts are used verbatim; content validation happens at
		// agent creation, not here.
		instruction = req.Agent.SystemPrompt
	}

	skills := "none listed"
	if len(req.RequiredSkills) > 0 {
		skills = "- " + strings.Join(req.RequiredSkills, "\n- ")
	}

	return fmt.Sprintf(promptTemplate, instruction, req.JobDescription, skills, req.CVText)
}

func parseScoreResponse(raw string) (ScoreResult, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ScoreResult{}, fmt.Errorf("parse scoring response: %w", err)
	}

	score, ok := coerceInt(data["score"])
	if !ok {
		return ScoreResult{}, errors.New("scoring response has no numeric score")
	}

	// The model occasionally wanders outside the requested range; bound it
	// here so stored scores are always comparable.
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ScoreResult{
		Score:     score,
		Summary:   coerceString(data["summary"]),
		Strengths: coerceStringSlice(data["strengths"]),
		Concerns:  coerceStringSlice(data["concerns"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}

func coerceStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
