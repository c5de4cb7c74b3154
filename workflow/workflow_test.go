package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTools implements every collaborator contract with scripted results
// and records how the engine drove it.
type fakeTools struct {
	extractText string
	extractErr  error
	entities    []Entity
	entitiesErr error
	references  []string
	searchErr   error
	drafts      []string
	draftErr    error
	verdicts    []Verdict
	reviewErr   error

	extractCalls  int
	entityCalls   int
	searchCalls   int
	generateCalls int
	reviewCalls   int

	queries []string
	widths  []int
	prompts []string
}

func (f *fakeTools) Transcribe(ctx context.Context, path string) (string, error) {
	f.extractCalls++
	return f.extractText, f.extractErr
}

func (f *fakeTools) ReadDocument(ctx context.Context, path string) (string, error) {
	f.extractCalls++
	return f.extractText, f.extractErr
}

func (f *fakeTools) DescribeVideo(ctx context.Context, path, caseID string) (string, error) {
	f.extractCalls++
	return f.extractText, f.extractErr
}

func (f *fakeTools) DescribeImage(ctx context.Context, path string) (string, error) {
	f.extractCalls++
	return f.extractText, f.extractErr
}

func (f *fakeTools) ExtractEntities(ctx context.Context, text string) ([]Entity, error) {
	f.entityCalls++
	return f.entities, f.entitiesErr
}

func (f *fakeTools) SearchReferences(ctx context.Context, query string, topK int) ([]string, error) {
	f.searchCalls++
	f.queries = append(f.queries, query)
	f.widths = append(f.widths, topK)
	return f.references, f.searchErr
}

func (f *fakeTools) GenerateDraft(ctx context.Context, prompt string) (string, error) {
	f.generateCalls++
	f.prompts = append(f.prompts, prompt)
	if f.draftErr != nil {
		return "", f.draftErr
	}
	idx := f.generateCalls - 1
	if idx >= len(f.drafts) {
		idx = len(f.drafts) - 1
	}
	return f.drafts[idx], nil
}

func (f *fakeTools) ReviewDraft(ctx context.Context, draft, originalContext string) (Verdict, error) {
	f.reviewCalls++
	if f.reviewErr != nil {
		return Verdict{}, f.reviewErr
	}
	idx := f.reviewCalls - 1
	if idx >= len(f.verdicts) {
		idx = len(f.verdicts) - 1
	}
	return f.verdicts[idx], nil
}

func newTestEngine(f *fakeTools, opts ...EngineOption) *Engine {
	base := []EngineOption{
		WithTranscriber(f),
		WithDocumentReader(f),
		WithVideoAnalyzer(f),
		WithImageAnalyzer(f),
		WithEntityExtractor(f),
		WithReferenceSearcher(f),
		WithDraftGenerator(f),
		WithDraftReviewer(f),
	}
	return NewEngine(append(base, opts...)...)
}

func seedState() CaseState {
	return CaseState{
		CaseID:      "case-1",
		FilePath:    "uploads/case-1/evidence.pdf",
		ContentType: "application/pdf",
	}
}

func TestRunHappyPath(t *testing.T) {
	tools := &fakeTools{
		extractText: "facts about a traffic accident",
		entities: []Entity{
			{Text: "traffic accident", Category: "Legal Concept"},
			{Text: "permanent injury", Category: "Key Fact"},
			{Text: "public transport company", Category: "Legal Person"},
		},
		references: []string{"article one", "article two"},
		drafts:     []string{"draft D1"},
		verdicts:   []Verdict{{Passed: true, Notes: "solid"}},
	}
	engine := newTestEngine(tools)

	final, err := engine.Run(context.Background(), seedState())
	require.NoError(t, err)

	assert.Equal(t, "facts about a traffic accident", final.ExtractedText())
	assert.Len(t, final.Entities, 3)
	assert.Len(t, final.References, 2)
	require.NotNil(t, final.Draft)
	assert.Equal(t, "draft D1", *final.Draft)
	require.NotNil(t, final.Verdict)
	assert.True(t, final.Verdict.Passed)
	assert.Equal(t, 0, final.Attempts)

	assert.Equal(t, 1, tools.generateCalls)
	assert.Equal(t, 1, tools.reviewCalls)
	assert.Equal(t, []string{"traffic accident permanent injury public transport company"}, tools.queries)
	assert.Equal(t, []int{DefaultRetrievalWidth}, tools.widths)
}

func TestRunOneCorrection(t *testing.T) {
	tools := &fakeTools{
		extractText: "facts about a traffic accident",
		entities:    []Entity{{Text: "traffic accident", Category: "Legal Concept"}},
		references:  []string{"article one", "article two"},
		drafts:      []string{"draft D1", "draft D2"},
		verdicts: []Verdict{
			{Passed: false, Notes: "missing legal basis"},
			{Passed: true, Notes: "resolved"},
		},
	}
	engine := newTestEngine(tools)

	final, err := engine.Run(context.Background(), seedState())
	require.NoError(t, err)

	require.NotNil(t, final.Draft)
	assert.Equal(t, "draft D2", *final.Draft)
	assert.True(t, final.Verdict.Passed)
	assert.Equal(t, 1, final.Attempts)
	assert.Equal(t, 2, tools.generateCalls)
	assert.Equal(t, 2, tools.reviewCalls)

	// The correction prompt must carry the auditor's notes.
	require.Len(t, tools.prompts, 2)
	assert.NotContains(t, tools.prompts[0], "missing legal basis")
	assert.Contains(t, tools.prompts[1], "missing legal basis")
}

func TestRunBudgetExhausted(t *testing.T) {
	tools := &fakeTools{
		extractText: "facts about a traffic accident",
		entities:    []Entity{{Text: "traffic accident", Category: "Legal Concept"}},
		references:  []string{"article one"},
		drafts:      []string{"draft"},
		verdicts:    []Verdict{{Passed: false, Notes: "never good enough"}},
	}
	engine := newTestEngine(tools)

	final, err := engine.Run(context.Background(), seedState())
	require.NoError(t, err)

	// One initial pass plus DefaultMaxAttempts corrections, one review each.
	assert.Equal(t, DefaultMaxAttempts+1, tools.generateCalls)
	assert.Equal(t, DefaultMaxAttempts+1, tools.reviewCalls)
	assert.Equal(t, DefaultMaxAttempts, final.Attempts)
	assert.False(t, final.Verdict.Passed)
	assert.NotEmpty(t, final.ExtractedText())
}

func TestRunExtractionFailure(t *testing.T) {
	tools := &fakeTools{
		extractErr: errors.New("transcription backend unreachable"),
		drafts:     []string{"should never be produced"},
		verdicts:   []Verdict{{Passed: true}},
	}
	engine := newTestEngine(tools)

	st := seedState()
	st.ContentType = "audio/mpeg"
	final, err := engine.Run(context.Background(), st)
	require.NoError(t, err)

	require.NotNil(t, final.Extraction)
	assert.True(t, final.Extraction.Failed)
	assert.Empty(t, final.ExtractedText())
	assert.Nil(t, final.Entities)
	assert.Nil(t, final.References)
	require.NotNil(t, final.Draft)
	assert.Equal(t, FailedDraftText, *final.Draft)
	require.NotNil(t, final.Verdict)
	assert.False(t, final.Verdict.Passed)
	assert.Equal(t, noDraftNotes, final.Verdict.Notes)
	assert.Equal(t, 0, final.Attempts)

	// Nothing downstream of extraction runs a collaborator.
	assert.Equal(t, 0, tools.entityCalls)
	assert.Equal(t, 0, tools.searchCalls)
	assert.Equal(t, 0, tools.generateCalls)
	assert.Equal(t, 0, tools.reviewCalls)
}

func TestRunTerminatesAgainstAdversarialReviewer(t *testing.T) {
	tools := &fakeTools{
		extractText: "some evidence",
		entities:    []Entity{{Text: "fact", Category: "Key Fact"}},
		references:  []string{},
		drafts:      []string{"draft"},
		verdicts:    []Verdict{{Passed: false, Notes: "no"}},
	}
	engine := newTestEngine(tools, WithMaxAttempts(5))

	final, err := engine.Run(context.Background(), seedState())
	require.NoError(t, err)

	assert.Equal(t, 6, tools.generateCalls)
	assert.Equal(t, 6, tools.reviewCalls)
	assert.Equal(t, 5, final.Attempts)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	tools := &fakeTools{extractText: "text"}
	engine := newTestEngine(tools)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, seedState())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, tools.extractCalls)
}

func TestRunRetrievalWidthOverride(t *testing.T) {
	tools := &fakeTools{
		extractText: "text",
		entities:    []Entity{{Text: "fact", Category: "Key Fact"}},
		references:  []string{"a", "b", "c", "d"},
		drafts:      []string{"draft"},
		verdicts:    []Verdict{{Passed: true}},
	}
	engine := newTestEngine(tools, WithRetrievalWidth(4))

	_, err := engine.Run(context.Background(), seedState())
	require.NoError(t, err)
	assert.Equal(t, []int{4}, tools.widths)
}
