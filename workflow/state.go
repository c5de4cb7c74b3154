package workflow

// Entity is one key item identified in the extracted evidence text.
type Entity struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Verdict is the quality reviewer's judgment of a strategy draft.
type Verdict struct {
	Passed bool   `json:"passed"`
	Notes  string `json:"notes"`
}

// ExtractionResult is the tagged outcome of the extract stage. Extraction
// failures stay data on the state so that later stages and the supervisor
// can inspect them instead of unwinding the graph.
type ExtractionResult struct {
	Text   string `json:"text"`
	Failed bool   `json:"failed"`
	Reason string `json:"reason,omitempty"`
}

// CaseState is the record threaded through the workflow graph. The three
// seed fields are set before the run; every other field is owned by
// exactly one stage and written through its returned Patch.
//
// Nil slices mean "upstream failed", empty slices mean "nothing found";
// the supervisor and synthesize stage rely on that distinction.
type CaseState struct {
	CaseID      string
	FilePath    string
	ContentType string

	Extraction *ExtractionResult
	Entities   []Entity
	References []string
	Draft      *string
	Verdict    *Verdict
	Attempts   int
}

// ExtractedText returns the successfully extracted text, or "" when
// extraction has not run or failed.
func (s CaseState) ExtractedText() string {
	if s.Extraction == nil || s.Extraction.Failed {
		return ""
	}
	return s.Extraction.Text
}

// Patch is the partial update a stage returns. A nil field leaves the
// corresponding state field untouched; a set field overwrites it, even
// when the new value is itself nil (how analyze reports upstream failure).
type Patch struct {
	Extraction *ExtractionResult
	Entities   *[]Entity
	References *[]string
	Draft      *string
	Verdict    *Verdict
	Attempts   *int
}

// Merge applies a patch to the state and returns the updated copy. It is
// the only place state fields are written between stages.
func Merge(s CaseState, p Patch) CaseState {
	if p.Extraction != nil {
		s.Extraction = p.Extraction
	}
	if p.Entities != nil {
		s.Entities = *p.Entities
	}
	if p.References != nil {
		s.References = *p.References
	}
	if p.Draft != nil {
		s.Draft = p.Draft
	}
	if p.Verdict != nil {
		s.Verdict = p.Verdict
	}
	if p.Attempts != nil {
		s.Attempts = *p.Attempts
	}
	return s
}
