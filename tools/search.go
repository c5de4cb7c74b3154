package tools

import (
	"context"
	"fmt"

	"casebrief-backend/repository"

	"github.com/rs/zerolog"
)

// ReferenceSearch answers knowledge base lookups by embedding the query
// and running a vector search over the stored reference chunks.
type ReferenceSearch struct {
	client *Client
	chunks *repository.ReferenceChunkRepository
	logger zerolog.Logger
}

// SearchOption configures a ReferenceSearch
type SearchOption func(*ReferenceSearch)

// SearchWithClient sets the Gemini client
func SearchWithClient(client *Client) SearchOption {
	return func(s *ReferenceSearch) {
		s.client = client
	}
}

// SearchWithChunkRepository sets the chunk repository
func SearchWithChunkRepository(repo *repository.ReferenceChunkRepository) SearchOption {
	return func(s *ReferenceSearch) {
		s.chunks = repo
	}
}

// SearchWithLogger sets the logger
func SearchWithLogger(logger zerolog.Logger) SearchOption {
	return func(s *ReferenceSearch) {
		s.logger = logger
	}
}

// NewReferenceSearch creates a knowledge base searcher
func NewReferenceSearch(opts ...SearchOption) *ReferenceSearch {
	s := &ReferenceSearch{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchReferences returns the topK reference texts nearest to the query
func (s *ReferenceSearch) SearchReferences(ctx context.Context, query string, topK int) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	if s.chunks == nil {
		return nil, fmt.Errorf("chunk repository not configured")
	}

	embedding, err := s.client.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := s.chunks.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("reference search failed: %w", err)
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}

	s.logger.Debug().
		Str("query", query).
		Int("top_k", topK).
		Int("results", len(texts)).
		Msg("knowledge base search")

	return texts, nil
}
