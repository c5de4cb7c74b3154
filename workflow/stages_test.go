package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzedState() CaseState {
	st := seedState()
	st.Extraction = &ExtractionResult{Text: "facts about a traffic accident"}
	st.Entities = []Entity{{Text: "traffic accident", Category: "Legal Concept"}}
	st.References = []string{"article one"}
	return st
}

func TestExtractUnsupportedKindFallsBackToSimulation(t *testing.T) {
	tools := &fakeTools{}
	engine := newTestEngine(tools)

	st := seedState()
	st.ContentType = "application/x-unknown"
	patch := engine.extract(context.Background(), st)

	require.NotNil(t, patch.Extraction)
	assert.False(t, patch.Extraction.Failed)
	assert.Equal(t, simulatedExtraction, patch.Extraction.Text)
	assert.Equal(t, 0, tools.extractCalls)
}

func TestExtractConvertsCollaboratorErrorToFailedResult(t *testing.T) {
	tools := &fakeTools{extractErr: errors.New("codec not supported")}
	engine := newTestEngine(tools)

	st := seedState()
	st.ContentType = "video/mp4"
	patch := engine.extract(context.Background(), st)

	require.NotNil(t, patch.Extraction)
	assert.True(t, patch.Extraction.Failed)
	assert.Equal(t, "codec not supported", patch.Extraction.Reason)
}

func TestAnalyzeSkipsWithoutText(t *testing.T) {
	tools := &fakeTools{}
	engine := newTestEngine(tools)

	patch := engine.analyze(context.Background(), seedState())

	assert.Equal(t, Patch{}, patch)
	assert.Equal(t, 0, tools.entityCalls)
}

func TestAnalyzeEntityFailureWritesExplicitNils(t *testing.T) {
	tools := &fakeTools{entitiesErr: errors.New("model overloaded")}
	engine := newTestEngine(tools)

	st := seedState()
	st.Extraction = &ExtractionResult{Text: "some text"}
	patch := engine.analyze(context.Background(), st)

	require.NotNil(t, patch.Entities)
	require.NotNil(t, patch.References)
	assert.Nil(t, *patch.Entities)
	assert.Nil(t, *patch.References)
	assert.Equal(t, 0, tools.searchCalls)
}

func TestAnalyzeSearchFailureYieldsEmptyReferences(t *testing.T) {
	tools := &fakeTools{
		entities:  []Entity{{Text: "fact", Category: "Key Fact"}},
		searchErr: errors.New("index unavailable"),
	}
	engine := newTestEngine(tools)

	st := seedState()
	st.Extraction = &ExtractionResult{Text: "some text"}
	patch := engine.analyze(context.Background(), st)

	require.NotNil(t, patch.References)
	require.NotNil(t, *patch.References)
	assert.Len(t, *patch.References, 0)
}

func TestSynthesizeMissingInputsReturnsFailureDraft(t *testing.T) {
	tools := &fakeTools{}
	engine := newTestEngine(tools)

	st := seedState()
	st.Extraction = &ExtractionResult{Text: "text"}
	// Entities were never produced.
	patch := engine.synthesize(context.Background(), st)

	require.NotNil(t, patch.Draft)
	assert.Equal(t, FailedDraftText, *patch.Draft)
	assert.Nil(t, patch.Attempts)
	assert.Equal(t, 0, tools.generateCalls)
}

func TestSynthesizeModeIsPureFunctionOfVerdict(t *testing.T) {
	tools := &fakeTools{drafts: []string{"draft"}}
	engine := newTestEngine(tools)

	st := analyzedState()
	engine.synthesize(context.Background(), st)
	engine.synthesize(context.Background(), st)

	// Identical incoming state yields textually identical prompts.
	require.Len(t, tools.prompts, 2)
	assert.Equal(t, tools.prompts[0], tools.prompts[1])
	assert.Contains(t, tools.prompts[0], "Preliminary Legal Strategy Draft")
	assert.NotContains(t, tools.prompts[0], "AUDITOR'S NOTES")
}

func TestSynthesizeCorrectionModeIncrementsAttempts(t *testing.T) {
	tools := &fakeTools{drafts: []string{"draft v2"}}
	engine := newTestEngine(tools)

	st := analyzedState()
	st.Verdict = &Verdict{Passed: false, Notes: "cite the statute"}
	st.Attempts = 0
	patch := engine.synthesize(context.Background(), st)

	require.NotNil(t, patch.Attempts)
	assert.Equal(t, 1, *patch.Attempts)
	assert.Contains(t, tools.prompts[0], "cite the statute")
}

func TestSynthesizeInitialModeDoesNotIncrementAttempts(t *testing.T) {
	tools := &fakeTools{drafts: []string{"draft"}}
	engine := newTestEngine(tools)

	patch := engine.synthesize(context.Background(), analyzedState())

	assert.Nil(t, patch.Attempts)
}

func TestSynthesizePassedVerdictSelectsInitialMode(t *testing.T) {
	tools := &fakeTools{drafts: []string{"draft"}}
	engine := newTestEngine(tools)

	st := analyzedState()
	st.Verdict = &Verdict{Passed: true, Notes: "fine"}
	patch := engine.synthesize(context.Background(), st)

	assert.Nil(t, patch.Attempts)
	assert.NotContains(t, tools.prompts[0], "AUDITOR'S NOTES")
}

func TestVerifyShortCircuitsWithoutDraft(t *testing.T) {
	tools := &fakeTools{}
	engine := newTestEngine(tools)

	patch := engine.verify(context.Background(), analyzedState())

	require.NotNil(t, patch.Verdict)
	assert.False(t, patch.Verdict.Passed)
	assert.Equal(t, noDraftNotes, patch.Verdict.Notes)
	assert.Equal(t, 0, tools.reviewCalls)
}

func TestVerifyShortCircuitsOnFailureDraft(t *testing.T) {
	tools := &fakeTools{}
	engine := newTestEngine(tools)

	st := analyzedState()
	failed := FailedDraftText
	st.Draft = &failed
	patch := engine.verify(context.Background(), st)

	require.NotNil(t, patch.Verdict)
	assert.False(t, patch.Verdict.Passed)
	assert.Equal(t, 0, tools.reviewCalls)
}

func TestVerifyConvertsReviewerFaultToFailedVerdict(t *testing.T) {
	tools := &fakeTools{reviewErr: errors.New("review service down")}
	engine := newTestEngine(tools)

	st := analyzedState()
	draft := "a reasonable draft"
	st.Draft = &draft
	patch := engine.verify(context.Background(), st)

	require.NotNil(t, patch.Verdict)
	assert.False(t, patch.Verdict.Passed)
	assert.Contains(t, patch.Verdict.Notes, "review service down")
}

func TestSuperviseRuleOrder(t *testing.T) {
	engine := NewEngine()
	draft := "draft"
	passed := Verdict{Passed: true}
	failed := Verdict{Passed: false}

	// Rule 1: missing upstream data terminates even with a passed verdict.
	st := CaseState{Draft: nil, Verdict: &passed}
	assert.Equal(t, stageEnd, engine.supervise(st))
	st = CaseState{Entities: nil, Draft: &draft, Verdict: &failed}
	assert.Equal(t, stageEnd, engine.supervise(st))

	// Rule 2: exhausted budget terminates regardless of verdict.
	st = CaseState{
		Entities: []Entity{{Text: "e"}},
		Draft:    &draft,
		Verdict:  &failed,
		Attempts: DefaultMaxAttempts,
	}
	assert.Equal(t, stageEnd, engine.supervise(st))

	// Rule 3: a passing verdict terminates.
	st.Attempts = 0
	st.Verdict = &passed
	assert.Equal(t, stageEnd, engine.supervise(st))

	// Rule 4: otherwise loop back to synthesize.
	st.Verdict = &failed
	assert.Equal(t, stageSynthesize, engine.supervise(st))
}
