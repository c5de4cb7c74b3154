package workflow

import "context"

// Stage identifiers for the fixed graph. The graph is data: linear edges
// live in the transition table, and the single conditional edge out of
// verify is owned by the supervisor.
type stage int

const (
	stageExtract stage = iota
	stageAnalyze
	stageSynthesize
	stageVerify
	stageEnd
)

func (s stage) String() string {
	switch s {
	case stageExtract:
		return "extract"
	case stageAnalyze:
		return "analyze"
	case stageSynthesize:
		return "synthesize"
	case stageVerify:
		return "verify"
	case stageEnd:
		return "end"
	}
	return "unknown"
}

// transitions holds the unconditional edges. Verify has no entry here:
// its successor is decided by the supervisor on every pass.
var transitions = map[stage]stage{
	stageExtract:    stageAnalyze,
	stageAnalyze:    stageSynthesize,
	stageSynthesize: stageVerify,
}

// Run executes the graph over the given seed state and returns the final
// state. Stages run strictly sequentially; each stage's patch is merged
// before the next stage starts. Collaborator failures never surface as
// errors here; they are recorded in the state by the owning stage. The
// only error Run returns is context cancellation, checked between stages
// so an aborted job stops at the next stage boundary.
func (e *Engine) Run(ctx context.Context, st CaseState) (CaseState, error) {
	cur := stageExtract
	for cur != stageEnd {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		e.logger.Debug().
			Str("case_id", st.CaseID).
			Str("stage", cur.String()).
			Msg("entering stage")

		var patch Patch
		switch cur {
		case stageExtract:
			patch = e.extract(ctx, st)
		case stageAnalyze:
			patch = e.analyze(ctx, st)
		case stageSynthesize:
			patch = e.synthesize(ctx, st)
		case stageVerify:
			patch = e.verify(ctx, st)
		}
		st = Merge(st, patch)

		if cur == stageVerify {
			cur = e.supervise(st)
		} else {
			cur = transitions[cur]
		}
	}
	return st, nil
}
