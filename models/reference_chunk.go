package models

import (
	"github.com/google/uuid"
)

// ReferenceChunk is one fragment of the legal knowledge base, embedded
// for similarity search.
type ReferenceChunk struct {
	ID             uuid.UUID `json:"id"`
	SourceDocument string    `json:"source_document"`
	ChunkIndex     int       `json:"chunk_index"`
	Text           string    `json:"text"`
	Distance       float64   `json:"distance,omitempty"` // Vector similarity distance
}
