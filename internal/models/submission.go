package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission lifecycle states. A submission only ever moves forward along
// pending -> evaluated -> feedback_provided; a failed evaluation attempt keeps
// the submission in pending with a diagnostic in the transcription field.
const (
	SubmissionStatusPending          = "pending"
	SubmissionStatusEvaluated        = "evaluated"
	SubmissionStatusFeedbackProvided = "feedback_provided"
)

// Submission is a student's recorded response to an assignment.
type Submission struct {
	ID            string            `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID  string            `gorm:"type:uuid;not null;index" json:"assignment_id"`
	StudentID     string            `gorm:"type:uuid;not null;index" json:"student_id"`
	AudioURL      string            `gorm:"size:512" json:"audio_url"`
	Transcription string            `gorm:"type:text" json:"transcription"`
	Status        string            `gorm:"size:32;not null;default:pending" json:"status"`
	SubmittedAt   time.Time         `gorm:"autoCreateTime" json:"submitted_at"`
	Assignment    Assignment        `gorm:"foreignKey:AssignmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student       User              `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Evaluation    *Evaluation       `gorm:"foreignKey:SubmissionID" json:"evaluation,omitempty"`
	Feedback      []TeacherFeedback `gorm:"foreignKey:SubmissionID" json:"feedback,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none is provided.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsEvaluated reports whether AI scoring has completed for the submission.
func (s Submission) IsEvaluated() bool {
	return s.Status == SubmissionStatusEvaluated || s.Status == SubmissionStatusFeedbackProvided
}
