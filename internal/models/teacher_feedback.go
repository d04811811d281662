package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeacherFeedback is free-text commentary a teacher attaches to a submission.
// Rows are append-only; a submission may accumulate several entries.
type TeacherFeedback struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID string    `gorm:"type:uuid;not null;index" json:"submission_id"`
	TeacherID    string    `gorm:"type:uuid;not null" json:"teacher_id"`
	Feedback     string    `gorm:"type:text;not null" json:"feedback"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none is provided.
func (f *TeacherFeedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
