package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.Evaluation{}, &models.TeacherFeedback{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Email:        username + "@example.com",
		FullName:     username,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createAssignment(t *testing.T, db *gorm.DB, teacherID, title string) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		TeacherID:   teacherID,
		Title:       title,
		Description: "describe your last workday",
		TestType:    models.TestTypeOET,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func createSubmission(t *testing.T, db *gorm.DB, assignmentID, studentID string, submittedAt time.Time) models.Submission {
	t.Helper()
	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		AudioURL:     "uploads/audio.mp3",
		Status:       models.SubmissionStatusPending,
		SubmittedAt:  submittedAt,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}
