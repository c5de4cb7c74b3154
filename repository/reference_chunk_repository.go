package repository

import (
	"context"
	"fmt"
	"strings"

	"casebrief-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferenceChunkRepository handles database operations for knowledge base chunks
type ReferenceChunkRepository struct {
	db *pgxpool.Pool
}

// NewReferenceChunkRepository creates a new reference chunk repository
func NewReferenceChunkRepository(db *pgxpool.Pool) *ReferenceChunkRepository {
	return &ReferenceChunkRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Search returns the chunks nearest to the query embedding by cosine distance
// embedding: Query embedding vector (768 dimensions)
// limit: Maximum number of chunks to return
func (r *ReferenceChunkRepository) Search(
	ctx context.Context,
	embedding []float64,
	limit int,
) ([]models.ReferenceChunk, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id,
			source_document,
			chunk_index,
			chunk_text,
			embedding <=> $1::vector AS distance
		FROM reference_chunks
		ORDER BY
			embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reference chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.ReferenceChunk
	for rows.Next() {
		var chunk models.ReferenceChunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.SourceDocument,
			&chunk.ChunkIndex,
			&chunk.Text,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reference chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reference chunks: %w", err)
	}

	return chunks, nil
}

// Insert stores a knowledge base chunk with its embedding
func (r *ReferenceChunkRepository) Insert(
	ctx context.Context,
	sourceDocument string,
	chunkIndex int,
	text string,
	embedding []float64,
) error {
	if len(embedding) != 768 {
		return fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	query := `
		INSERT INTO reference_chunks (source_document, chunk_index, chunk_text, embedding)
		VALUES ($1, $2, $3, $4::vector)`

	_, err := r.db.Exec(ctx, query, sourceDocument, chunkIndex, text, formatVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to insert reference chunk: %w", err)
	}
	return nil
}
