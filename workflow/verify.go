package workflow

import (
	"context"
	"fmt"
)

// noDraftNotes is the verdict explanation recorded when there is no valid
// draft to review.
const noDraftNotes = "no valid draft to review"

// verify judges the draft against the context it was built from. Without
// a usable draft the stage short-circuits to a failed verdict and makes
// no external call. A reviewer fault also becomes a failed verdict:
// verification problems are always read as "needs another synthesis
// pass", never as a fatal error.
func (e *Engine) verify(ctx context.Context, st CaseState) Patch {
	if st.Draft == nil || *st.Draft == FailedDraftText {
		e.logger.Info().
			Str("case_id", st.CaseID).
			Msg("no valid draft, skipping quality review")
		return Patch{Verdict: &Verdict{Passed: false, Notes: noDraftNotes}}
	}

	verdict, err := e.reviewDraft(ctx, *st.Draft, buildCaseContext(st))
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("case_id", st.CaseID).
			Msg("quality review failed")
		verdict = Verdict{
			Passed: false,
			Notes:  fmt.Sprintf("quality review could not be completed: %v", err),
		}
	}

	e.logger.Info().
		Str("case_id", st.CaseID).
		Bool("passed", verdict.Passed).
		Msg("quality verdict received")
	return Patch{Verdict: &verdict}
}

func (e *Engine) reviewDraft(ctx context.Context, draft, originalContext string) (Verdict, error) {
	if e.reviewer == nil {
		return Verdict{}, errDraftReviewerNotSet
	}
	return e.reviewer.ReviewDraft(ctx, draft, originalContext)
}
