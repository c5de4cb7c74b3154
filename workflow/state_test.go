package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverwritesOnlySetFields(t *testing.T) {
	draft := "original draft"
	st := CaseState{
		CaseID:     "case-1",
		Entities:   []Entity{{Text: "a", Category: "x"}},
		References: []string{"ref"},
		Draft:      &draft,
		Attempts:   1,
	}

	revised := "revised draft"
	attempts := 2
	merged := Merge(st, Patch{Draft: &revised, Attempts: &attempts})

	assert.Equal(t, "revised draft", *merged.Draft)
	assert.Equal(t, 2, merged.Attempts)
	// Untouched fields survive.
	assert.Equal(t, st.Entities, merged.Entities)
	assert.Equal(t, st.References, merged.References)
	assert.Equal(t, "case-1", merged.CaseID)
}

func TestMergeEmptyPatchIsIdentity(t *testing.T) {
	verdict := Verdict{Passed: true, Notes: "fine"}
	st := CaseState{
		CaseID:   "case-1",
		Verdict:  &verdict,
		Attempts: 1,
	}

	assert.Equal(t, st, Merge(st, Patch{}))
}

func TestMergeCanSetFieldsToNil(t *testing.T) {
	st := CaseState{
		Entities:   []Entity{{Text: "a", Category: "x"}},
		References: []string{"ref"},
	}

	// Analyze reports upstream failure by explicitly writing nils.
	var noEntities []Entity
	var noReferences []string
	merged := Merge(st, Patch{Entities: &noEntities, References: &noReferences})

	assert.Nil(t, merged.Entities)
	assert.Nil(t, merged.References)
}

func TestExtractedText(t *testing.T) {
	var st CaseState
	assert.Empty(t, st.ExtractedText())

	st.Extraction = &ExtractionResult{Failed: true, Reason: "boom"}
	assert.Empty(t, st.ExtractedText())

	st.Extraction = &ExtractionResult{Text: "hello"}
	assert.Equal(t, "hello", st.ExtractedText())
}

func TestMergePreservesAbsentVersusEmptyDistinction(t *testing.T) {
	empty := []string{}
	merged := Merge(CaseState{}, Patch{References: &empty})

	require.NotNil(t, merged.References)
	assert.Len(t, merged.References, 0)
}
