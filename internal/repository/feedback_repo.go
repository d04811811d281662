package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

// FeedbackRepository defines persistence operations for teacher feedback.
// Feedback rows are append-only.
type FeedbackRepository interface {
	ListBySubmission(ctx context.Context, submissionID string) ([]models.TeacherFeedback, error)
	Create(ctx context.Context, feedback *models.TeacherFeedback) error
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.TeacherFeedback, error) {
	var feedback []models.TeacherFeedback
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).Order("created_at ASC").Find(&feedback).Error; err != nil {
		return nil, err
	}

	return feedback, nil
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.TeacherFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}
