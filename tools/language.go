package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"casebrief-backend/workflow"

	"github.com/rs/zerolog"
)

// LanguageTools implements the text-only collaborators: entity
// extraction, draft generation and draft review.
type LanguageTools struct {
	client *Client
	logger zerolog.Logger
}

// LanguageOption configures LanguageTools
type LanguageOption func(*LanguageTools)

// LanguageWithClient sets the Gemini client
func LanguageWithClient(client *Client) LanguageOption {
	return func(l *LanguageTools) {
		l.client = client
	}
}

// LanguageWithLogger sets the logger
func LanguageWithLogger(logger zerolog.Logger) LanguageOption {
	return func(l *LanguageTools) {
		l.logger = logger
	}
}

// NewLanguageTools creates the text-only collaborators
func NewLanguageTools(opts ...LanguageOption) *LanguageTools {
	l := &LanguageTools{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// stripCodeFence removes a ```json ... ``` wrapper the model sometimes adds
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractEntities identifies the key entities in evidence text
func (l *LanguageTools) ExtractEntities(ctx context.Context, text string) ([]workflow.Entity, error) {
	if l.client == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}

	prompt := fmt.Sprintf(`You are a legal analyst. Identify the key entities in the following evidence text.

Return ONLY a JSON array, no commentary. Each element must have:
- "text": the entity as it appears in the evidence
- "category": one of "person", "organization", "location", "date", "monetary_amount", "legal_concept", "object"

EVIDENCE TEXT:
%s`, text)

	raw, err := l.client.generate(ctx, prompt, 0.1)
	if err != nil {
		return nil, fmt.Errorf("entity extraction failed: %w", err)
	}

	var entities []workflow.Entity
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entity response: %w", err)
	}

	l.logger.Debug().Int("entities", len(entities)).Msg("extracted entities")
	return entities, nil
}

// GenerateDraft turns a fully built instruction into strategy text
func (l *LanguageTools) GenerateDraft(ctx context.Context, prompt string) (string, error) {
	if l.client == nil {
		return "", fmt.Errorf("gemini client not configured")
	}
	return l.client.generate(ctx, prompt, 0.2)
}

// ReviewDraft judges a draft against the context it was built from
func (l *LanguageTools) ReviewDraft(ctx context.Context, draft, originalContext string) (workflow.Verdict, error) {
	if l.client == nil {
		return workflow.Verdict{}, fmt.Errorf("gemini client not configured")
	}

	prompt := fmt.Sprintf(`You are a senior legal auditor. Review the draft strategy below against the case material it was built from.

Check that the draft:
1. Is consistent with the evidence and cites no facts absent from it
2. Uses the retrieved laws and articles correctly
3. Names the respondents and a competent venue
4. Proposes a concrete, legally sound next step

Return ONLY a JSON object: {"passed": true|false, "notes": "<specific errors to correct, or empty if passed>"}

CASE MATERIAL:
%s

DRAFT STRATEGY:
%s`, originalContext, draft)

	raw, err := l.client.generate(ctx, prompt, 0.1)
	if err != nil {
		return workflow.Verdict{}, fmt.Errorf("draft review failed: %w", err)
	}

	var verdict workflow.Verdict
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &verdict); err != nil {
		return workflow.Verdict{}, fmt.Errorf("failed to parse review response: %w", err)
	}
	return verdict, nil
}
