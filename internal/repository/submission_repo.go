package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

// SubmissionFilter narrows submission queries. TeacherID filters to
// submissions under assignments owned by that teacher.
type SubmissionFilter struct {
	AssignmentID *string
	StudentID    *string
	TeacherID    *string
	Status       *string
}

// SubmissionChanges is an explicit per-field update set. Only non-nil fields
// are written, so a partial update can never accidentally clear a column.
type SubmissionChanges struct {
	Transcription *string
	Status        *string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id string) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, id string, changes SubmissionChanges) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student").
		Preload("Evaluation").
		Preload("Feedback")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("submissions.assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("submissions.student_id = ?", *filter.StudentID)
	}

	if filter.TeacherID != nil {
		query = query.Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
			Where("assignments.teacher_id = ?", *filter.TeacherID)
	}

	if filter.Status != nil {
		query = query.Where("submissions.status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submissions.submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, "submissions.id = ?", id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// GetByAssignmentAndStudent returns the latest submission for the pair.
// Resubmission is allowed, so "the" submission is the newest one.
func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("submissions.assignment_id = ?", assignmentID).
		Where("submissions.student_id = ?", studentID).
		Order("submissions.submitted_at DESC").
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// Update applies the non-nil fields of changes. It returns
// gorm.ErrRecordNotFound when the submission no longer exists, which lets the
// evaluation worker treat a concurrently deleted target as a no-op.
func (r *submissionRepository) Update(ctx context.Context, id string, changes SubmissionChanges) error {
	values := map[string]interface{}{}
	if changes.Transcription != nil {
		values["transcription"] = *changes.Transcription
	}
	if changes.Status != nil {
		values["status"] = *changes.Status
	}

	if len(values) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
