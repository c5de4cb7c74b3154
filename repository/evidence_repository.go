package repository

import (
	"context"
	"errors"

	"casebrief-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EvidenceRepository handles database operations for evidence records
type EvidenceRepository struct {
	db *pgxpool.Pool
}

// NewEvidenceRepository creates a new evidence repository
func NewEvidenceRepository(db *pgxpool.Pool) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

const evidenceColumns = `
	id, case_id, filename, storage_path, content_type, status,
	extracted_text, extracted_entities, retrieved_references,
	draft_strategy, quality_verdict, correction_attempts,
	created_at, updated_at`

func scanEvidence(row pgx.Row) (*models.Evidence, error) {
	e := &models.Evidence{}
	err := row.Scan(
		&e.ID, &e.CaseID, &e.Filename, &e.StoragePath, &e.ContentType, &e.Status,
		&e.ExtractedText, &e.ExtractedEntities, &e.RetrievedReferences,
		&e.DraftStrategy, &e.QualityVerdict, &e.CorrectionAttempts,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create inserts a new evidence record in pending status
func (r *EvidenceRepository) Create(ctx context.Context, e *models.Evidence) error {
	query := `
		INSERT INTO evidence (case_id, filename, storage_path, content_type, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	if e.Status == "" {
		e.Status = models.StatusPending
	}
	return r.db.QueryRow(ctx, query,
		e.CaseID, e.Filename, e.StoragePath, e.ContentType, e.Status).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID retrieves an evidence record by ID
func (r *EvidenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Evidence, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence WHERE id = $1`
	return scanEvidence(r.db.QueryRow(ctx, query, id))
}

// ListByCase retrieves all evidence for a case, oldest first
func (r *EvidenceRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Evidence, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence WHERE case_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Evidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}

	return list, rows.Err()
}

// UpdateStatus moves an evidence record to a new processing status
func (r *EvidenceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProcessingStatus) error {
	query := `UPDATE evidence SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyAnalysis persists the full outcome of an analysis run in one statement
func (r *EvidenceRepository) ApplyAnalysis(ctx context.Context, e *models.Evidence) error {
	query := `
		UPDATE evidence
		SET status = $1,
		    extracted_text = $2,
		    extracted_entities = $3,
		    retrieved_references = $4,
		    draft_strategy = $5,
		    quality_verdict = $6,
		    correction_attempts = $7,
		    updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		e.Status, e.ExtractedText, e.ExtractedEntities, e.RetrievedReferences,
		e.DraftStrategy, e.QualityVerdict, e.CorrectionAttempts, e.ID).
		Scan(&e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// MarkFatal records an unrecoverable processing failure
func (r *EvidenceRepository) MarkFatal(ctx context.Context, id uuid.UUID) error {
	return r.UpdateStatus(ctx, id, models.StatusFatalError)
}
