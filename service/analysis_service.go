package service

import (
	"context"
	"errors"
	"fmt"

	"casebrief-backend/models"
	"casebrief-backend/repository"
	"casebrief-backend/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// EvidenceStore is the persistence surface the analysis runner needs
type EvidenceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Evidence, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProcessingStatus) error
	ApplyAnalysis(ctx context.Context, e *models.Evidence) error
	MarkFatal(ctx context.Context, id uuid.UUID) error
}

// JobQueue hands evidence IDs from the API to the workers
type JobQueue interface {
	Enqueue(ctx context.Context, evidenceID uuid.UUID) error
	Dequeue(ctx context.Context) (uuid.UUID, error)
}

// GraphRunner executes the analysis workflow over a case state
type GraphRunner interface {
	Run(ctx context.Context, st workflow.CaseState) (workflow.CaseState, error)
}

// AnalysisService owns the evidence processing lifecycle: queueing jobs,
// running the workflow, and persisting the outcome.
type AnalysisService struct {
	store  EvidenceStore
	queue  JobQueue
	engine GraphRunner
	logger zerolog.Logger
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithStore sets the evidence store
func AnalysisWithStore(store EvidenceStore) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.store = store
	}
}

// AnalysisWithQueue sets the job queue
func AnalysisWithQueue(q JobQueue) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.queue = q
	}
}

// AnalysisWithEngine sets the workflow engine
func AnalysisWithEngine(engine GraphRunner) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.engine = engine
	}
}

// AnalysisWithLogger sets the logger
func AnalysisWithLogger(logger zerolog.Logger) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.logger = logger
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit queues an evidence record for analysis. The record moves to
// queued status before the job is pushed so a poll never sees a queued
// job with a pending record.
func (s *AnalysisService) Submit(ctx context.Context, evidenceID uuid.UUID) error {
	if s.store == nil || s.queue == nil {
		return errors.New("analysis service not fully configured")
	}

	e, err := s.store.GetByID(ctx, evidenceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEvidenceNotFound
		}
		return err
	}
	if e.Status.Terminal() || e.Status == models.StatusProcessing {
		return fmt.Errorf("evidence %s is %s and cannot be resubmitted", evidenceID, e.Status)
	}

	if err := s.store.UpdateStatus(ctx, evidenceID, models.StatusQueued); err != nil {
		return err
	}
	if err := s.queue.Enqueue(ctx, evidenceID); err != nil {
		return err
	}

	s.logger.Info().Str("evidence_id", evidenceID.String()).Msg("evidence queued for analysis")
	return nil
}

// Process runs the full analysis for one evidence record. A missing
// record aborts silently; any panic marks the record fatal.
func (s *AnalysisService) Process(ctx context.Context, evidenceID uuid.UUID) (err error) {
	if s.store == nil || s.engine == nil {
		return errors.New("analysis service not fully configured")
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("evidence_id", evidenceID.String()).
				Interface("panic", r).
				Msg("analysis panicked")
			// Best effort: the panic already lost the run.
			_ = s.store.MarkFatal(context.WithoutCancel(ctx), evidenceID)
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()

	e, err := s.store.GetByID(ctx, evidenceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().
				Str("evidence_id", evidenceID.String()).
				Msg("queued evidence no longer exists, dropping job")
			return nil
		}
		return err
	}

	if err := s.store.UpdateStatus(ctx, evidenceID, models.StatusProcessing); err != nil {
		return err
	}

	st := workflow.CaseState{
		CaseID:      e.CaseID.String(),
		FilePath:    e.StoragePath,
		ContentType: e.ContentType,
	}

	final, runErr := s.engine.Run(ctx, st)
	if runErr != nil {
		s.logger.Error().
			Err(runErr).
			Str("evidence_id", evidenceID.String()).
			Msg("workflow run failed")
		if markErr := s.store.MarkFatal(context.WithoutCancel(ctx), evidenceID); markErr != nil {
			s.logger.Error().Err(markErr).Msg("failed to mark evidence fatal")
		}
		return runErr
	}

	applyFinalState(e, final)

	if err := s.store.ApplyAnalysis(ctx, e); err != nil {
		s.logger.Error().
			Err(err).
			Str("evidence_id", evidenceID.String()).
			Msg("failed to persist analysis outcome")
		if markErr := s.store.MarkFatal(context.WithoutCancel(ctx), evidenceID); markErr != nil {
			s.logger.Error().Err(markErr).Msg("failed to mark evidence fatal")
		}
		return err
	}

	s.logger.Info().
		Str("evidence_id", evidenceID.String()).
		Str("status", string(e.Status)).
		Int("correction_attempts", e.CorrectionAttempts).
		Msg("analysis finished")
	return nil
}

// applyFinalState maps the workflow outcome onto the evidence record.
// Completed means usable text came out of extraction; everything the run
// produced is kept either way so a failed run is still inspectable.
func applyFinalState(e *models.Evidence, final workflow.CaseState) {
	if text := final.ExtractedText(); text != "" {
		e.Status = models.StatusCompleted
		e.ExtractedText = &text
	} else {
		e.Status = models.StatusError
		e.ExtractedText = nil
	}

	e.ExtractedEntities = models.EntityList(final.Entities)
	e.RetrievedReferences = models.ReferenceList(final.References)
	e.DraftStrategy = final.Draft
	if final.Verdict != nil {
		v := models.QualityVerdict(*final.Verdict)
		e.QualityVerdict = &v
	} else {
		e.QualityVerdict = nil
	}
	e.CorrectionAttempts = final.Attempts
}

// RunWorkers processes queued jobs with count concurrent workers until
// the context is cancelled.
func (s *AnalysisService) RunWorkers(ctx context.Context, count int) error {
	if s.queue == nil {
		return errors.New("job queue not set")
	}
	if count <= 0 {
		count = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		worker := i
		g.Go(func() error {
			log := s.logger.With().Int("worker", worker).Logger()
			for {
				id, err := s.queue.Dequeue(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return nil
					}
					return err
				}

				// A failed job must not take the worker down with it.
				if err := s.Process(ctx, id); err != nil {
					log.Error().Err(err).Str("evidence_id", id.String()).Msg("job failed")
				}
			}
		})
	}
	return g.Wait()
}
