package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"casebrief-backend/workflow"

	"github.com/google/uuid"
)

// ProcessingStatus represents where an evidence record is in its lifecycle.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusQueued     ProcessingStatus = "queued"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusError      ProcessingStatus = "error"
	StatusFatalError ProcessingStatus = "fatal_error"
)

// Terminal reports whether the status can no longer change for this
// submission.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusFatalError
}

// EntityList is the JSONB column type for extracted entities. A nil list
// is stored as SQL NULL so the absent-versus-empty distinction the
// supervisor relies on survives a round trip.
type EntityList []workflow.Entity

// Value implements driver.Valuer for JSONB
func (l EntityList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB
func (l *EntityList) Scan(value interface{}) error {
	bytes, ok := jsonBytes(value)
	if !ok {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// ReferenceList is the JSONB column type for retrieved reference texts.
type ReferenceList []string

// Value implements driver.Valuer for JSONB
func (l ReferenceList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB
func (l *ReferenceList) Scan(value interface{}) error {
	bytes, ok := jsonBytes(value)
	if !ok {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// QualityVerdict is the JSONB column type for the reviewer's verdict.
type QualityVerdict workflow.Verdict

// Value implements driver.Valuer for JSONB
func (v *QualityVerdict) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB
func (v *QualityVerdict) Scan(value interface{}) error {
	bytes, ok := jsonBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, v)
}

// jsonBytes normalizes the raw values pgx may hand a JSONB scanner.
func jsonBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		return v, true
	case string:
		if v == "" {
			return nil, false
		}
		return []byte(v), true
	default:
		return nil, false
	}
}

// Evidence is one submitted artifact plus the full trace of its analysis.
type Evidence struct {
	ID          uuid.UUID `json:"id"`
	CaseID      uuid.UUID `json:"case_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	ContentType string    `json:"content_type"`

	Status ProcessingStatus `json:"processing_status"`

	ExtractedText       *string         `json:"extracted_text,omitempty"`
	ExtractedEntities   EntityList      `json:"extracted_entities,omitempty"`
	RetrievedReferences ReferenceList   `json:"retrieved_references,omitempty"`
	DraftStrategy       *string         `json:"draft_strategy,omitempty"`
	QualityVerdict      *QualityVerdict `json:"quality_verdict,omitempty"`
	CorrectionAttempts  int             `json:"correction_attempts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
