package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Assignment, error)
	GetByID(ctx context.Context, id string) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// Delete removes an assignment together with its submissions, their
// evaluations and any teacher feedback. The cascade is explicit so no
// submission is ever silently orphaned.
func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submissionIDs []string
		if err := tx.Model(&models.Submission{}).Where("assignment_id = ?", id).Pluck("id", &submissionIDs).Error; err != nil {
			return err
		}

		if len(submissionIDs) > 0 {
			if err := tx.Where("submission_id IN ?", submissionIDs).Delete(&models.TeacherFeedback{}).Error; err != nil {
				return err
			}
			if err := tx.Where("submission_id IN ?", submissionIDs).Delete(&models.Evaluation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("assignment_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.Assignment{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
