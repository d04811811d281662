package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

func TestAssignmentRepositoryListByTeacher(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	teacherA := createUser(t, db, "teacher-a", models.RoleTeacher)
	teacherB := createUser(t, db, "teacher-b", models.RoleTeacher)

	createAssignment(t, db, teacherA.ID, "first")
	createAssignment(t, db, teacherA.ID, "second")
	createAssignment(t, db, teacherB.ID, "third")

	own, err := repo.ListByTeacher(context.Background(), teacherA.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestAssignmentRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleStudent)
	assignment := createAssignment(t, db, teacher.ID, "doomed")
	keep := createAssignment(t, db, teacher.ID, "kept")

	submission := createSubmission(t, db, assignment.ID, student.ID, time.Now())
	kept := createSubmission(t, db, keep.ID, student.ID, time.Now())

	require.NoError(t, db.Create(&models.Evaluation{
		SubmissionID:       submission.ID,
		OverallScore:       70,
		PronunciationScore: 70,
		FluencyScore:       70,
		VocabularyScore:    70,
		GrammarScore:       70,
	}).Error)
	require.NoError(t, db.Create(&models.TeacherFeedback{
		SubmissionID: submission.ID,
		TeacherID:    teacher.ID,
		Feedback:     "work on pacing",
	}).Error)

	require.NoError(t, repo.Delete(context.Background(), assignment.ID))

	var count int64
	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", assignment.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Evaluation{}).Where("submission_id = ?", submission.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.TeacherFeedback{}).Where("submission_id = ?", submission.ID).Count(&count).Error)
	require.Zero(t, count)

	// Sibling assignment untouched.
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", kept.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAssignmentRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	err := repo.Delete(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
