package workflow

import "context"

// The engine consumes external capabilities through narrow contracts.
// Implementations live outside this package (see the tools package) and
// are injected when the engine is constructed; the engine never builds
// its own clients.

// Transcriber converts an audio recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// DocumentReader extracts the textual content of a document file.
type DocumentReader interface {
	ReadDocument(ctx context.Context, path string) (string, error)
}

// VideoAnalyzer produces a written report of what a video shows. The case
// id lets the implementation organize any intermediate artifacts it writes.
type VideoAnalyzer interface {
	DescribeVideo(ctx context.Context, path, caseID string) (string, error)
}

// ImageAnalyzer produces an objective description of an image.
type ImageAnalyzer interface {
	DescribeImage(ctx context.Context, path string) (string, error)
}

// EntityExtractor identifies the key entities in evidence text.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]Entity, error)
}

// ReferenceSearcher looks up the topK most relevant reference texts in
// the legal knowledge base.
type ReferenceSearcher interface {
	SearchReferences(ctx context.Context, query string, topK int) ([]string, error)
}

// DraftGenerator turns a fully built instruction into strategy text.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, prompt string) (string, error)
}

// DraftReviewer judges a draft against the context it was built from.
type DraftReviewer interface {
	ReviewDraft(ctx context.Context, draft, originalContext string) (Verdict, error)
}
