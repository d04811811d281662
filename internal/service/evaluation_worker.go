package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/repository"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/pkg/ai"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/pkg/storage"
)

var evaluationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "langcoach",
	Subsystem: "pipeline",
	Name:      "evaluation_attempts_total",
	Help:      "Evaluation attempts by outcome",
}, []string{"outcome"})

// DiagnosticProviderUnconfigured is written to a submission's transcription
// field when no AI provider is configured.
const DiagnosticProviderUnconfigured = "AI evaluation unavailable - provider not configured"

const diagnosticPrefix = "Error during AI evaluation: "

// EvaluationScheduler hands a submission to the asynchronous evaluation
// pipeline. Scheduling never blocks the caller.
type EvaluationScheduler interface {
	Schedule(submissionID string)
}

// EvaluationEngine drives a submission from pending through AI transcription
// and scoring to evaluated. Attempts for the same submission id are
// coalesced, so at most one evaluation runs per submission at any time;
// distinct submissions evaluate in parallel.
//
// A failed attempt leaves the submission in pending with a diagnostic in the
// transcription field; no partial evaluation is ever persisted. The
// transcription is persisted before scoring starts, so callers polling the
// submission can observe progress.
type EvaluationEngine struct {
	submissions repository.SubmissionRepository
	evaluations repository.EvaluationRepository
	evaluator   ai.SpeechEvaluator
	store       storage.AudioStore
	logger      zerolog.Logger
	timeout     time.Duration

	group singleflight.Group
	wg    sync.WaitGroup
}

// NewEvaluationEngine constructs the engine. evaluator may be nil when no
// provider is configured; scheduled submissions then receive the
// unavailability diagnostic and stay pending.
func NewEvaluationEngine(submissions repository.SubmissionRepository, evaluations repository.EvaluationRepository, evaluator ai.SpeechEvaluator, store storage.AudioStore, timeout time.Duration, logger zerolog.Logger) *EvaluationEngine {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &EvaluationEngine{
		submissions: submissions,
		evaluations: evaluations,
		evaluator:   evaluator,
		store:       store,
		logger:      logger.With().Str("component", "evaluation_engine").Logger(),
		timeout:     timeout,
	}
}

// Schedule queues an evaluation attempt for the submission. Concurrent calls
// for the same id share a single attempt.
func (e *EvaluationEngine) Schedule(submissionID string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_, _, _ = e.group.Do(submissionID, func() (interface{}, error) {
			e.process(submissionID)
			return nil, nil
		})
	}()
}

// Drain blocks until all scheduled attempts have finished. Used during
// shutdown and by tests.
func (e *EvaluationEngine) Drain() {
	e.wg.Wait()
}

func (e *EvaluationEngine) process(submissionID string) {
	// Detached from the originating request: the worker must not hold the
	// client connection open.
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	logger := e.logger.With().Str("submission_id", submissionID).Logger()

	submission, err := e.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted while queued; nothing to do.
			evaluationOutcomes.WithLabelValues("skipped").Inc()
			return
		}
		logger.Error().Err(err).Msg("failed to load submission")
		evaluationOutcomes.WithLabelValues("failed").Inc()
		return
	}

	if submission.Status != models.SubmissionStatusPending {
		// Already carried an evaluation to a terminal state; re-delivery of
		// the same work item is a no-op.
		evaluationOutcomes.WithLabelValues("skipped").Inc()
		return
	}

	if e.evaluator == nil {
		logger.Warn().Msg("no AI provider configured, skipping evaluation")
		e.writeDiagnostic(ctx, submissionID, DiagnosticProviderUnconfigured)
		evaluationOutcomes.WithLabelValues("unavailable").Inc()
		return
	}

	audio, err := e.store.Open(ctx, submission.AudioURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open audio artifact")
		e.writeDiagnostic(ctx, submissionID, diagnosticPrefix+err.Error())
		evaluationOutcomes.WithLabelValues("failed").Inc()
		return
	}

	transcript, err := e.evaluator.Transcribe(ctx, filepath.Base(submission.AudioURL), audio)
	audio.Close()
	if err != nil {
		logger.Error().Err(err).Msg("transcription failed")
		e.writeDiagnostic(ctx, submissionID, diagnosticPrefix+err.Error())
		evaluationOutcomes.WithLabelValues("failed").Inc()
		return
	}

	// First stage of the commit: the transcription is visible to readers
	// before scoring completes.
	if err := e.submissions.Update(ctx, submissionID, repository.SubmissionChanges{Transcription: &transcript}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			evaluationOutcomes.WithLabelValues("skipped").Inc()
			return
		}
		logger.Error().Err(err).Msg("failed to persist transcription")
		evaluationOutcomes.WithLabelValues("failed").Inc()
		return
	}

	result, err := e.evaluator.Score(ctx, transcript, submission.Assignment.TestType)
	if err != nil {
		logger.Error().Err(err).Msg("scoring failed")
		e.writeDiagnostic(ctx, submissionID, diagnosticPrefix+err.Error())
		evaluationOutcomes.WithLabelValues("failed").Inc()
		return
	}

	evaluation := models.Evaluation{
		SubmissionID:       submissionID,
		OverallScore:       result.OverallScore,
		PronunciationScore: result.PronunciationScore,
		FluencyScore:       result.FluencyScore,
		VocabularyScore:    result.VocabularyScore,
		GrammarScore:       result.GrammarScore,
		AIFeedback: datatypes.NewJSONType(models.FeedbackDetail{
			Pronunciation: result.Feedback.Pronunciation,
			Fluency:       result.Feedback.Fluency,
			Vocabulary:    result.Feedback.Vocabulary,
			Grammar:       result.Feedback.Grammar,
			Strengths:     result.Feedback.Strengths,
			Improvements:  result.Feedback.Improvements,
		}),
	}

	if err := e.evaluations.Create(ctx, &evaluation); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Another attempt already persisted an evaluation; leave its
			// result in place.
			evaluationOutcomes.WithLabelValues("skipped").Inc()
			return
		}
		logger.Error().Err(err).Msg("failed to persist evaluation")
		e.writeDiagnostic(ctx, submissionID, diagnosticPrefix+err.Error())
		evaluationOutcomes.WithLabelValues("failed").Inc()
		return
	}

	status := models.SubmissionStatusEvaluated
	if err := e.submissions.Update(ctx, submissionID, repository.SubmissionChanges{Status: &status}); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error().Err(err).Msg("failed to update submission status")
		}
		evaluationOutcomes.WithLabelValues("failed").Inc()
		return
	}

	logger.Info().Int("overall_score", result.OverallScore).Msg("submission evaluated")
	evaluationOutcomes.WithLabelValues("evaluated").Inc()
}

// writeDiagnostic records a failure in the submission's transcription field.
// The submission stays pending and remains queryable; a vanished submission
// is treated as a no-op.
func (e *EvaluationEngine) writeDiagnostic(parent context.Context, submissionID, diagnostic string) {
	// Fresh deadline: the parent context may already be expired when the
	// failure being recorded was a timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 10*time.Second)
	defer cancel()

	err := e.submissions.Update(ctx, submissionID, repository.SubmissionChanges{Transcription: &diagnostic})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		e.logger.Error().Err(err).Str("submission_id", submissionID).Msg("failed to write diagnostic")
	}
}
