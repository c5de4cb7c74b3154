package repository

import (
	"context"
	"errors"

	"casebrief-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// CaseRepository handles database operations for cases
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (title, summary)
		VALUES ($1, $2)
		RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, c.Title, c.Summary).
		Scan(&c.ID, &c.CreatedAt)
}

// GetByID retrieves a case by ID, without its evidence
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c := &models.Case{}
	query := `
		SELECT id, title, summary, created_at
		FROM cases
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Title, &c.Summary, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

// List retrieves cases ordered by creation time, newest first
func (r *CaseRepository) List(ctx context.Context, limit, offset int) ([]*models.Case, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, title, summary, created_at
		FROM cases
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		c := &models.Case{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Summary, &c.CreatedAt); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}

	return cases, rows.Err()
}
