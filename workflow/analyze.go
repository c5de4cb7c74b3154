package workflow

import (
	"context"
	"strings"
)

// analyze extracts entities from the evidence text and retrieves the most
// relevant reference texts from the knowledge base. With no text to work
// on the stage is skipped entirely (empty patch). When entity extraction
// fails, both result fields are explicitly set to nil; downstream stages
// read nil as "upstream failed" and an empty slice as "nothing found".
func (e *Engine) analyze(ctx context.Context, st CaseState) Patch {
	text := st.ExtractedText()
	if text == "" {
		e.logger.Info().
			Str("case_id", st.CaseID).
			Msg("no text to analyze, skipping stage")
		return Patch{}
	}

	entities, err := e.extractEntities(ctx, text)
	if err != nil || len(entities) == 0 {
		e.logger.Warn().
			Err(err).
			Str("case_id", st.CaseID).
			Msg("entity extraction failed")
		var noEntities []Entity
		var noReferences []string
		return Patch{Entities: &noEntities, References: &noReferences}
	}

	query := buildReferenceQuery(entities)
	references := e.retrieveReferences(ctx, st.CaseID, query)

	e.logger.Info().
		Str("case_id", st.CaseID).
		Int("entities", len(entities)).
		Int("references", len(references)).
		Msg("analysis completed")

	return Patch{Entities: &entities, References: &references}
}

// buildReferenceQuery concatenates entity texts with single spaces,
// preserving extraction order.
func buildReferenceQuery(entities []Entity) string {
	texts := make([]string, 0, len(entities))
	for _, ent := range entities {
		texts = append(texts, ent.Text)
	}
	return strings.Join(texts, " ")
}

func (e *Engine) extractEntities(ctx context.Context, text string) ([]Entity, error) {
	if e.entities == nil {
		return nil, errEntityExtractorNotSet
	}
	return e.entities.ExtractEntities(ctx, text)
}

// retrieveReferences queries the knowledge base. A search failure is not
// an upstream failure: the run proceeds with an empty reference list.
func (e *Engine) retrieveReferences(ctx context.Context, caseID, query string) []string {
	if e.search == nil {
		return []string{}
	}
	references, err := e.search.SearchReferences(ctx, query, e.retrievalWidth)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("case_id", caseID).
			Msg("reference retrieval failed, continuing with empty context")
		return []string{}
	}
	if references == nil {
		references = []string{}
	}
	return references
}
