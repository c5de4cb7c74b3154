package workflow

import (
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAttempts bounds how many correction rounds the verify
	// loop may request before the run terminates regardless of verdict.
	DefaultMaxAttempts = 2

	// DefaultRetrievalWidth is how many reference texts the analyze
	// stage requests from the knowledge base.
	DefaultRetrievalWidth = 2
)

// Engine executes the evidence-processing graph: extract, analyze,
// synthesize, verify, with a single supervisor-controlled back-edge from
// verify to synthesize. An Engine is constructed once at process start
// and is safe for concurrent Run calls; all mutable data lives in the
// CaseState of each run.
type Engine struct {
	transcriber Transcriber
	documents   DocumentReader
	video       VideoAnalyzer
	images      ImageAnalyzer
	entities    EntityExtractor
	search      ReferenceSearcher
	generator   DraftGenerator
	reviewer    DraftReviewer

	maxAttempts    int
	retrievalWidth int
	logger         zerolog.Logger
}

// EngineOption is a functional option for Engine.
type EngineOption func(*Engine)

// WithTranscriber sets the audio transcription collaborator.
func WithTranscriber(t Transcriber) EngineOption {
	return func(e *Engine) {
		e.transcriber = t
	}
}

// WithDocumentReader sets the document extraction collaborator.
func WithDocumentReader(d DocumentReader) EngineOption {
	return func(e *Engine) {
		e.documents = d
	}
}

// WithVideoAnalyzer sets the video analysis collaborator.
func WithVideoAnalyzer(v VideoAnalyzer) EngineOption {
	return func(e *Engine) {
		e.video = v
	}
}

// WithImageAnalyzer sets the image analysis collaborator.
func WithImageAnalyzer(i ImageAnalyzer) EngineOption {
	return func(e *Engine) {
		e.images = i
	}
}

// WithEntityExtractor sets the entity extraction collaborator.
func WithEntityExtractor(x EntityExtractor) EngineOption {
	return func(e *Engine) {
		e.entities = x
	}
}

// WithReferenceSearcher sets the knowledge-base search collaborator.
func WithReferenceSearcher(s ReferenceSearcher) EngineOption {
	return func(e *Engine) {
		e.search = s
	}
}

// WithDraftGenerator sets the strategy generation collaborator.
func WithDraftGenerator(g DraftGenerator) EngineOption {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithDraftReviewer sets the quality review collaborator.
func WithDraftReviewer(r DraftReviewer) EngineOption {
	return func(e *Engine) {
		e.reviewer = r
	}
}

// WithMaxAttempts overrides the correction budget.
func WithMaxAttempts(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.maxAttempts = n
		}
	}
}

// WithRetrievalWidth overrides how many references analyze retrieves.
func WithRetrievalWidth(k int) EngineOption {
	return func(e *Engine) {
		if k > 0 {
			e.retrievalWidth = k
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates a new workflow engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		maxAttempts:    DefaultMaxAttempts,
		retrievalWidth: DefaultRetrievalWidth,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
