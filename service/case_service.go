package service

import (
	"context"
	"errors"
	"io"

	"casebrief-backend/models"
	"casebrief-backend/repository"
	"casebrief-backend/storage"

	"github.com/google/uuid"
)

// CaseService handles business logic for cases and evidence intake
type CaseService struct {
	caseRepo     *repository.CaseRepository
	evidenceRepo *repository.EvidenceRepository
	fileStorage  storage.Storage
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// WithCaseRepository sets the case repository
func WithCaseRepository(repo *repository.CaseRepository) CaseServiceOption {
	return func(s *CaseService) {
		s.caseRepo = repo
	}
}

// WithEvidenceRepository sets the evidence repository
func WithEvidenceRepository(repo *repository.EvidenceRepository) CaseServiceOption {
	return func(s *CaseService) {
		s.evidenceRepo = repo
	}
}

// WithFileStorage sets the evidence file storage backend
func WithFileStorage(st storage.Storage) CaseServiceOption {
	return func(s *CaseService) {
		s.fileStorage = st
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrEvidenceNotFound = errors.New("evidence not found")
)

// CreateCaseRequest represents a request to create a case
type CreateCaseRequest struct {
	Title   string
	Summary *string
}

// CreateCaseResult represents the result of creating a case
type CreateCaseResult struct {
	Case *models.Case
}

// CreateCase creates a new case
func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (*CreateCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	c := &models.Case{
		Title:   req.Title,
		Summary: req.Summary,
	}

	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	return &CreateCaseResult{Case: c}, nil
}

// GetCaseRequest represents a request to get a case with its evidence
type GetCaseRequest struct {
	ID uuid.UUID
}

// GetCaseResult represents the result of getting a case
type GetCaseResult struct {
	Case *models.Case
}

// GetCase retrieves a case and all of its evidence records
func (s *CaseService) GetCase(ctx context.Context, req GetCaseRequest) (*GetCaseResult, error) {
	if s.caseRepo == nil || s.evidenceRepo == nil {
		return nil, errors.New("repositories not set")
	}

	c, err := s.caseRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	evidence, err := s.evidenceRepo.ListByCase(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	c.Evidence = evidence

	return &GetCaseResult{Case: c}, nil
}

// ListCasesRequest represents a request to list cases
type ListCasesRequest struct {
	Limit  int
	Offset int
}

// ListCasesResult represents the result of listing cases
type ListCasesResult struct {
	Cases []*models.Case
}

// ListCases retrieves cases ordered by creation time
func (s *CaseService) ListCases(ctx context.Context, req ListCasesRequest) (*ListCasesResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	cases, err := s.caseRepo.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return &ListCasesResult{Cases: cases}, nil
}

// AddEvidenceRequest represents an uploaded evidence file
type AddEvidenceRequest struct {
	CaseID      uuid.UUID
	Filename    string
	ContentType string
	Data        io.Reader
}

// AddEvidenceResult represents the result of storing evidence
type AddEvidenceResult struct {
	Evidence *models.Evidence
}

// AddEvidence stores the uploaded file and creates a pending evidence record
func (s *CaseService) AddEvidence(ctx context.Context, req AddEvidenceRequest) (*AddEvidenceResult, error) {
	if s.caseRepo == nil || s.evidenceRepo == nil {
		return nil, errors.New("repositories not set")
	}
	if s.fileStorage == nil {
		return nil, errors.New("file storage not set")
	}

	// The case must exist before we accept files for it
	if _, err := s.caseRepo.GetByID(ctx, req.CaseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	fileID := uuid.New()
	storagePath, err := s.fileStorage.Upload(ctx, fileID, req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	e := &models.Evidence{
		CaseID:      req.CaseID,
		Filename:    req.Filename,
		StoragePath: storagePath,
		ContentType: req.ContentType,
		Status:      models.StatusPending,
	}
	if err := s.evidenceRepo.Create(ctx, e); err != nil {
		// The record failed, so the stored file is orphaned. Best effort cleanup.
		_ = s.fileStorage.Delete(ctx, storagePath)
		return nil, err
	}

	return &AddEvidenceResult{Evidence: e}, nil
}

// GetEvidenceRequest represents a request to get an evidence record
type GetEvidenceRequest struct {
	ID uuid.UUID
}

// GetEvidenceResult represents the result of getting evidence
type GetEvidenceResult struct {
	Evidence *models.Evidence
}

// GetEvidence retrieves an evidence record by ID
func (s *CaseService) GetEvidence(ctx context.Context, req GetEvidenceRequest) (*GetEvidenceResult, error) {
	if s.evidenceRepo == nil {
		return nil, errors.New("evidence repository not set")
	}

	e, err := s.evidenceRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEvidenceNotFound
		}
		return nil, err
	}

	return &GetEvidenceResult{Evidence: e}, nil
}
