package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/dto"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/repository"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/pkg/storage"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrUnsupportedAudio indicates the uploaded file is not a recognised audio format.
var ErrUnsupportedAudio = errors.New("unsupported audio format")

// SubmissionService orchestrates submission workflows. Creation persists the
// submission synchronously in pending and schedules AI evaluation out of
// band; the caller never blocks on scoring.
type SubmissionService interface {
	Create(ctx context.Context, actor authz.Actor, assignmentID string, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	Get(ctx context.Context, actor authz.Actor, id string) (dto.SubmissionDetailResponse, error)
	List(ctx context.Context, actor authz.Actor, filter dto.SubmissionFilter) ([]dto.SubmissionDetailResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	store       storage.AudioStore
	scheduler   EvaluationScheduler
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, store storage.AudioStore, scheduler EvaluationScheduler, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		store:       store,
		scheduler:   scheduler,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Create(ctx context.Context, actor authz.Actor, assignmentID string, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := authz.Authorize(actor, authz.OpCreateSubmission, authz.Target{}); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if file == nil {
		return dto.SubmissionResponse{}, fmt.Errorf("audio file is required")
	}

	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if err := validateAudioType(file); err != nil {
		return dto.SubmissionResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	audioRef, err := s.store.Save(ctx, file.Filename, reader)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to store audio: %w", err)
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    actor.ID,
		AudioURL:     audioRef,
		Status:       models.SubmissionStatusPending,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Str("submission_id", submission.ID).Str("assignment_id", assignmentID).Msg("submission created")

	// Evaluation runs out of band; the caller gets the pending submission
	// back immediately.
	s.scheduler.Schedule(submission.ID)

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.NewSubmissionResponse(submission), nil
	}

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Get(ctx context.Context, actor authz.Actor, id string) (dto.SubmissionDetailResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionDetailResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionDetailResponse{}, err
	}

	target := authz.Target{StudentID: submission.StudentID, TeacherID: submission.Assignment.TeacherID}
	if err := authz.Authorize(actor, authz.OpViewSubmission, target); err != nil {
		return dto.SubmissionDetailResponse{}, err
	}

	return dto.NewSubmissionDetailResponse(submission), nil
}

// List returns submissions visible to the actor. Students are always scoped
// to their own submissions, teachers to submissions under assignments they
// own; only admins may list across the whole platform.
func (s *submissionService) List(ctx context.Context, actor authz.Actor, filter dto.SubmissionFilter) ([]dto.SubmissionDetailResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		Status:       filter.Status,
	}

	switch actor.Role {
	case models.RoleStudent:
		repoFilter.StudentID = &actor.ID
	case models.RoleTeacher:
		repoFilter.TeacherID = &actor.ID
	case models.RoleAdmin:
		repoFilter.StudentID = filter.StudentID
	default:
		if actor.ID == "" {
			return nil, authz.ErrUnauthenticated
		}
		return nil, authz.ErrForbidden
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionDetailResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionDetailResponse(submission))
	}

	return responses, nil
}

func validateAudioType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"audio/mpeg", "audio/wav", "audio/webm", "video/webm", "audio/ogg", "audio/mp4", "video/mp4", "audio/flac", "audio/aac"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedAudio, mime.String())
}
