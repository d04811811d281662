package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

// EvaluationRepository defines persistence operations for AI evaluations.
type EvaluationRepository interface {
	GetBySubmission(ctx context.Context, submissionID string) (models.Evaluation, error)
	List(ctx context.Context) ([]models.Evaluation, error)
	Create(ctx context.Context, evaluation *models.Evaluation) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates the repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) GetBySubmission(ctx context.Context, submissionID string) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).First(&evaluation, "submission_id = ?", submissionID).Error; err != nil {
		return models.Evaluation{}, err
	}

	return evaluation, nil
}

func (r *evaluationRepository) List(ctx context.Context) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

// Create persists the evaluation. The unique index on submission_id rejects a
// second evaluation for the same submission with gorm.ErrDuplicatedKey.
func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}
