package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FeedbackDetail is the structured AI feedback attached to an evaluation.
type FeedbackDetail struct {
	Pronunciation string   `json:"pronunciation"`
	Fluency       string   `json:"fluency"`
	Vocabulary    string   `json:"vocabulary"`
	Grammar       string   `json:"grammar"`
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
}

// Evaluation captures the AI scoring outcome for a submission. The unique
// index on SubmissionID guarantees at most one persisted evaluation per
// submission, even under concurrent scoring attempts.
type Evaluation struct {
	ID                 string                             `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID       string                             `gorm:"type:uuid;uniqueIndex;not null" json:"submission_id"`
	OverallScore       int                                `gorm:"not null" json:"overall_score"`
	PronunciationScore int                                `gorm:"not null" json:"pronunciation_score"`
	FluencyScore       int                                `gorm:"not null" json:"fluency_score"`
	VocabularyScore    int                                `gorm:"not null" json:"vocabulary_score"`
	GrammarScore       int                                `gorm:"not null" json:"grammar_score"`
	AIFeedback         datatypes.JSONType[FeedbackDetail] `json:"ai_feedback"`
	CreatedAt          time.Time                          `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none is provided.
func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
