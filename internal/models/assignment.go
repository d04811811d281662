package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Test types supported by the speaking assessments.
const (
	TestTypeOET             = "OET"
	TestTypeIELTS           = "IELTS"
	TestTypeBusinessEnglish = "Business English"
)

// Assignment is a speaking task authored by a teacher.
type Assignment struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID    string     `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	TestType     string     `gorm:"size:32;not null" json:"test_type"`
	DueDate      *time.Time `json:"due_date"`
	Instructions string     `gorm:"type:text" json:"instructions"`
	CreatedAt    time.Time  `json:"created_at"`
	Teacher      User       `gorm:"foreignKey:TeacherID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a UUID primary key when none is provided.
func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ValidTestType reports whether the given test type is supported.
func ValidTestType(testType string) bool {
	switch testType {
	case TestTypeOET, TestTypeIELTS, TestTypeBusinessEnglish:
		return true
	default:
		return false
	}
}
