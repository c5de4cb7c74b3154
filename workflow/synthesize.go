package workflow

import (
	"context"
	"fmt"
	"strings"
)

// FailedDraftText is the fixed draft value recorded when synthesis cannot
// run or the generation collaborator fails. The verify stage matches it
// exactly to decide whether there is anything worth reviewing.
const FailedDraftText = "draft unavailable: required inputs are missing"

// synthesize builds the strategy draft from the extracted text, entities
// and retrieved references. The prompt mode is a pure function of the
// incoming verdict: a prior failed verdict switches the stage into
// correction mode, where the reviewer's notes become mandatory fixes.
// Each pass is independent; the only thing carried between passes is
// the attempt counter and the verdict-derived prompt.
func (e *Engine) synthesize(ctx context.Context, st CaseState) Patch {
	if st.ExtractedText() == "" || st.Entities == nil || st.References == nil {
		e.logger.Warn().
			Str("case_id", st.CaseID).
			Msg("required inputs missing, cannot synthesize")
		draft := FailedDraftText
		return Patch{Draft: &draft}
	}

	base := buildCaseContext(st)

	var prompt string
	correction := st.Verdict != nil && !st.Verdict.Passed
	if correction {
		e.logger.Info().
			Str("case_id", st.CaseID).
			Int("attempt", st.Attempts+1).
			Msg("prior draft rejected, preparing correction prompt")
		prompt = correctionPrompt(st.Verdict.Notes, base)
	} else {
		e.logger.Info().
			Str("case_id", st.CaseID).
			Msg("preparing initial synthesis prompt")
		prompt = initialPrompt(base)
	}

	draft, err := e.generateDraft(ctx, prompt)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("case_id", st.CaseID).
			Msg("draft generation failed")
		draft = FailedDraftText
	}

	patch := Patch{Draft: &draft}
	if correction {
		// Only passes beyond the first count against the budget.
		attempts := st.Attempts + 1
		patch.Attempts = &attempts
	}
	return patch
}

func (e *Engine) generateDraft(ctx context.Context, prompt string) (string, error) {
	if e.generator == nil {
		return "", errDraftGeneratorNotSet
	}
	return e.generator.GenerateDraft(ctx, prompt)
}

// buildCaseContext assembles the shared context block used by both the
// synthesis prompts and the quality review.
func buildCaseContext(st CaseState) string {
	var entities strings.Builder
	for _, ent := range st.Entities {
		fmt.Fprintf(&entities, "- %s (%s)\n", ent.Text, ent.Category)
	}

	var references strings.Builder
	for i, ref := range st.References {
		fmt.Fprintf(&references, "[%d] %s\n", i+1, ref)
	}

	return fmt.Sprintf(`ORIGINAL EVIDENCE TEXT:
%s

KEY ENTITIES IDENTIFIED:
%s
RELEVANT LAWS AND ARTICLES RETRIEVED:
%s`,
		st.ExtractedText(),
		entities.String(),
		references.String(),
	)
}

// initialPrompt requests the five-part preliminary strategy memorandum.
func initialPrompt(caseContext string) string {
	return fmt.Sprintf(`You are a senior attorney directing a legal aid clinic.
Review the following context and write a "Preliminary Legal Strategy Draft".
The draft must be clear, structured and professional, and must include:

1. Brief summary of the case.
2. Principal legal basis.
3. Potential respondents.
4. Note on the clinic's venue and competence.
5. Recommended next step.

Context to analyze:
---
%s
---`, caseContext)
}

// correctionPrompt requests a revised memorandum that addresses the
// auditor's notes on the rejected draft.
func correctionPrompt(notes, caseContext string) string {
	return fmt.Sprintf(`You are a senior attorney and your previous draft was rejected by an auditor.
Write a NEW AND IMPROVED version of the "Preliminary Legal Strategy Draft",
based on the original context and correcting every issue the auditor raised.

AUDITOR'S NOTES (errors that MUST be corrected):
%s

ORIGINAL CONTEXT (use it as the base):
%s

Produce a new version that resolves the problems above.`, notes, caseContext)
}
