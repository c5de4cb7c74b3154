package models

import (
	"time"

	"github.com/google/uuid"
)

// Case is one unit of legal work. It owns zero or more Evidence records.
type Case struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Summary   *string   `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Populated by the repository on detail reads.
	Evidence []*Evidence `json:"evidence,omitempty"`
}
