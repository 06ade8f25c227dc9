// internal/scoring/provider.go
package scoring

import (
	"context"

	"recruitflow/internal/models"
)

// DegradedScore is the fixed score returned whenever the provider cannot
// produce a real evaluation. It classifies as "potencial" under the default
// thresholds, which keeps an unscorable candidate in the pipeline for a
// human to look at.
const DegradedScore = 50

// ScoreRequest carries everything the provider needs for one evaluation.
type ScoreRequest struct {
	CVText         string
	JobDescription string
	RequiredSkills []string
	Agent          *models.AIAgent // optional custom instruction and thresholds
}

// ScoreResult is the provider's answer. Degraded distinguishes a real
// evaluation from the fixed fallback, so callers can observe degradation
// without it being ambiguous with a clean success.
type ScoreResult struct {
	Score          int      `json:"score"`
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Concerns       []string `json:"concerns"`
	Degraded       bool     `json:"degraded"`
	DegradedReason string   `json:"degradedReason,omitempty"`
}

// Provider scores a CV against a job description. Implementations never
// return an error: scoring is best-effort and must not block the candidate
// pipeline, so every failure mode collapses into a degraded result.
type Provider interface {
	Score(ctx context.Context, req ScoreRequest) ScoreResult
}

// Available reports whether the provider can produce real evaluations.
// False means every call will return the degraded result.
type Availability interface {
	Available() bool
}

func degradedUnavailable() ScoreResult {
	return ScoreResult{
		Score:   DegradedScore,
		Summary: "Automatic CV analysis is unavailable; this candidate needs manual review.",
		Concerns: []string{
			"AI scoring integration is not configured",
		},
		Degraded:       true,
		DegradedReason: "scoring integration not configured",
	}
}

func degradedFailure(reason string) ScoreResult {
	return ScoreResult{
		Score:   DegradedScore,
		Summary: "The CV could not be analyzed automatically; this candidate needs manual review.",
		Concerns: []string{
			"automatic analysis failed: " + reason,
		},
		Degraded:       true,
		DegradedReason: reason,
	}
}
