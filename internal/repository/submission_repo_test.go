package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

func TestSubmissionRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	teacherA := createUser(t, db, "teacher-a", models.RoleTeacher)
	teacherB := createUser(t, db, "teacher-b", models.RoleTeacher)
	student := createUser(t, db, "student-a", models.RoleStudent)
	other := createUser(t, db, "student-b", models.RoleStudent)

	assignmentA := createAssignment(t, db, teacherA.ID, "OET roleplay")
	assignmentB := createAssignment(t, db, teacherB.ID, "IELTS part two")

	now := time.Now()
	first := createSubmission(t, db, assignmentA.ID, student.ID, now.Add(-2*time.Hour))
	createSubmission(t, db, assignmentA.ID, other.ID, now.Add(-time.Hour))
	createSubmission(t, db, assignmentB.ID, student.ID, now)

	evaluated := models.SubmissionStatusEvaluated
	require.NoError(t, repo.Update(context.Background(), first.ID, SubmissionChanges{Status: &evaluated}))

	byStudent, err := repo.List(context.Background(), SubmissionFilter{StudentID: &student.ID})
	require.NoError(t, err)
	require.Len(t, byStudent, 2)

	byTeacher, err := repo.List(context.Background(), SubmissionFilter{TeacherID: &teacherA.ID})
	require.NoError(t, err)
	require.Len(t, byTeacher, 2)
	for _, s := range byTeacher {
		require.Equal(t, assignmentA.ID, s.AssignmentID)
	}

	byStatus, err := repo.List(context.Background(), SubmissionFilter{Status: &evaluated})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	require.Equal(t, first.ID, byStatus[0].ID)

	byAssignment, err := repo.List(context.Background(), SubmissionFilter{AssignmentID: &assignmentB.ID})
	require.NoError(t, err)
	require.Len(t, byAssignment, 1)
}

func TestSubmissionRepositoryListOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleStudent)
	assignment := createAssignment(t, db, teacher.ID, "Business case")

	older := createSubmission(t, db, assignment.ID, student.ID, time.Now().Add(-time.Hour))
	newer := createSubmission(t, db, assignment.ID, student.ID, time.Now())

	all, err := repo.List(context.Background(), SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, newer.ID, all[0].ID)
	require.Equal(t, older.ID, all[1].ID)
}

func TestSubmissionRepositoryLatestForPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleStudent)
	assignment := createAssignment(t, db, teacher.ID, "OET interview")

	createSubmission(t, db, assignment.ID, student.ID, time.Now().Add(-time.Hour))
	latest := createSubmission(t, db, assignment.ID, student.ID, time.Now())

	found, err := repo.GetByAssignmentAndStudent(context.Background(), assignment.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, latest.ID, found.ID)
}

func TestSubmissionRepositoryGetPreloadsRelations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleStudent)
	assignment := createAssignment(t, db, teacher.ID, "IELTS cue card")
	submission := createSubmission(t, db, assignment.ID, student.ID, time.Now())

	require.NoError(t, db.Create(&models.Evaluation{
		SubmissionID:       submission.ID,
		OverallScore:       80,
		PronunciationScore: 80,
		FluencyScore:       80,
		VocabularyScore:    80,
		GrammarScore:       80,
	}).Error)

	found, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, assignment.Title, found.Assignment.Title)
	require.Equal(t, teacher.ID, found.Assignment.TeacherID)
	require.Equal(t, student.Username, found.Student.Username)
	require.NotNil(t, found.Evaluation)
	require.Equal(t, 80, found.Evaluation.OverallScore)
}

func TestSubmissionRepositoryUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleStudent)
	assignment := createAssignment(t, db, teacher.ID, "OET handover")
	submission := createSubmission(t, db, assignment.ID, student.ID, time.Now())

	transcript := "the patient was admitted with chest pain"
	require.NoError(t, repo.Update(context.Background(), submission.ID, SubmissionChanges{Transcription: &transcript}))

	found, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, transcript, found.Transcription)
	require.Equal(t, models.SubmissionStatusPending, found.Status, "status should be untouched by a transcription-only update")

	// No-op when nothing is set.
	require.NoError(t, repo.Update(context.Background(), submission.ID, SubmissionChanges{}))
}

func TestSubmissionRepositoryUpdateMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	status := models.SubmissionStatusEvaluated
	err := repo.Update(context.Background(), "00000000-0000-0000-0000-000000000000", SubmissionChanges{Status: &status})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
