package workflow

// supervise decides the next stage after every verify pass. Rules are
// checked in order, first match wins:
//
//  1. entities or draft missing: upstream failed, looping cannot help
//  2. correction budget exhausted, regardless of verdict
//  3. verdict passed
//  4. otherwise, route back to synthesize for a correction round
//
// The counter incremented by every correction-mode synthesize pass
// guarantees rule 2 eventually fires, so the loop terminates for any
// verdict sequence.
func (e *Engine) supervise(st CaseState) stage {
	switch {
	case st.Entities == nil || st.Draft == nil:
		e.logger.Info().
			Str("case_id", st.CaseID).
			Msg("supervisor: critical data missing, terminating")
		return stageEnd

	case st.Attempts >= e.maxAttempts:
		e.logger.Info().
			Str("case_id", st.CaseID).
			Int("attempts", st.Attempts).
			Msg("supervisor: correction budget exhausted, terminating")
		return stageEnd

	case st.Verdict != nil && st.Verdict.Passed:
		e.logger.Info().
			Str("case_id", st.CaseID).
			Msg("supervisor: draft meets the quality bar, terminating")
		return stageEnd

	default:
		e.logger.Info().
			Str("case_id", st.CaseID).
			Int("attempts", st.Attempts).
			Msg("supervisor: draft rejected, returning to synthesize")
		return stageSynthesize
	}
}
