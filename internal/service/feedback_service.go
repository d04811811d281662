package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/dto"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/repository"
)

// ErrSubmissionNotEvaluated indicates feedback was attempted before AI
// scoring completed. Allowing it would break the rule that an evaluation
// exists for every submission at or past the evaluated state.
var ErrSubmissionNotEvaluated = errors.New("submission has not been evaluated yet")

// FeedbackService handles teacher feedback on evaluated submissions.
type FeedbackService interface {
	Provide(ctx context.Context, actor authz.Actor, payload dto.FeedbackRequest) (dto.TeacherFeedbackResponse, error)
}

type feedbackService struct {
	submissions repository.SubmissionRepository
	feedback    repository.FeedbackRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewFeedbackService constructs a FeedbackService instance.
func NewFeedbackService(submissions repository.SubmissionRepository, feedback repository.FeedbackRepository, validate *validator.Validate, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		submissions: submissions,
		feedback:    feedback,
		validator:   validate,
		logger:      logger.With().Str("component", "feedback_service").Logger(),
	}
}

// Provide appends a feedback entry to an evaluated submission owned by one of
// the actor's assignments. The first entry moves the submission to
// feedback_provided; later entries append without changing status.
func (s *feedbackService) Provide(ctx context.Context, actor authz.Actor, payload dto.FeedbackRequest) (dto.TeacherFeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherFeedbackResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherFeedbackResponse{}, ErrSubmissionNotFound
		}
		return dto.TeacherFeedbackResponse{}, err
	}

	target := authz.Target{TeacherID: submission.Assignment.TeacherID, StudentID: submission.StudentID}
	if err := authz.Authorize(actor, authz.OpProvideFeedback, target); err != nil {
		return dto.TeacherFeedbackResponse{}, err
	}

	if !submission.IsEvaluated() {
		return dto.TeacherFeedbackResponse{}, ErrSubmissionNotEvaluated
	}

	entry := models.TeacherFeedback{
		SubmissionID: submission.ID,
		TeacherID:    actor.ID,
		Feedback:     payload.Feedback,
	}

	if err := s.feedback.Create(ctx, &entry); err != nil {
		return dto.TeacherFeedbackResponse{}, err
	}

	if submission.Status == models.SubmissionStatusEvaluated {
		status := models.SubmissionStatusFeedbackProvided
		if err := s.submissions.Update(ctx, submission.ID, repository.SubmissionChanges{Status: &status}); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherFeedbackResponse{}, err
		}
	}

	s.logger.Info().Str("submission_id", submission.ID).Str("teacher_id", actor.ID).Msg("teacher feedback recorded")

	return dto.NewTeacherFeedbackResponse(entry), nil
}
