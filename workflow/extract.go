package workflow

import (
	"context"
	"strings"
)

// extract dispatches to the collaborator matching the declared content
// kind and records the outcome as a tagged result. Any collaborator error
// is caught at this boundary and converted into a failed result; the
// stage never lets a fault escape to the graph runner.
func (e *Engine) extract(ctx context.Context, st CaseState) Patch {
	var (
		text string
		err  error
	)

	switch {
	case strings.Contains(st.ContentType, "audio"):
		text, err = e.transcribe(ctx, st.FilePath)
	case strings.Contains(st.ContentType, "pdf"):
		text, err = e.readDocument(ctx, st.FilePath)
	case strings.Contains(st.ContentType, "video"):
		text, err = e.describeVideo(ctx, st.FilePath, st.CaseID)
	case strings.Contains(st.ContentType, "image"):
		text, err = e.describeImage(ctx, st.FilePath)
	default:
		e.logger.Warn().
			Str("case_id", st.CaseID).
			Str("content_type", st.ContentType).
			Msg("unsupported content kind, using simulated extraction")
		text = simulatedExtraction
	}

	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("case_id", st.CaseID).
			Msg("extraction failed")
		return Patch{Extraction: &ExtractionResult{Failed: true, Reason: err.Error()}}
	}

	e.logger.Info().
		Str("case_id", st.CaseID).
		Int("chars", len(text)).
		Msg("text extracted")
	return Patch{Extraction: &ExtractionResult{Text: text}}
}

// simulatedExtraction stands in for content kinds that have no real
// collaborator wired, so the rest of the pipeline can still be exercised.
const simulatedExtraction = "Simulated extraction: the submitted file could not be " +
	"processed by a dedicated tool. It is assumed to contain clauses, articles " +
	"and relevant facts for the case."

func (e *Engine) transcribe(ctx context.Context, path string) (string, error) {
	if e.transcriber == nil {
		return simulatedExtraction, nil
	}
	return e.transcriber.Transcribe(ctx, path)
}

func (e *Engine) readDocument(ctx context.Context, path string) (string, error) {
	if e.documents == nil {
		return simulatedExtraction, nil
	}
	return e.documents.ReadDocument(ctx, path)
}

func (e *Engine) describeVideo(ctx context.Context, path, caseID string) (string, error) {
	if e.video == nil {
		return simulatedExtraction, nil
	}
	return e.video.DescribeVideo(ctx, path, caseID)
}

func (e *Engine) describeImage(ctx context.Context, path string) (string, error) {
	if e.images == nil {
		return simulatedExtraction, nil
	}
	return e.images.DescribeImage(ctx, path)
}
