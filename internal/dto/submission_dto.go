package dto

import (
	"time"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

// SubmissionFilter describes query string filters for listing submissions.
// Role scoping is applied by the service on top of these.
type SubmissionFilter struct {
	AssignmentID *string `query:"assignment_id"`
	StudentID    *string `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=pending evaluated feedback_provided"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	TestType string `json:"test_type"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID            string         `json:"id"`
	AssignmentID  string         `json:"assignment_id"`
	StudentID     string         `json:"student_id"`
	AudioURL      string         `json:"audio_url"`
	Transcription string         `json:"transcription"`
	Status        string         `json:"status"`
	SubmittedAt   time.Time      `json:"submitted_at"`
	Assignment    AssignmentLite `json:"assignment"`
	Student       StudentLite    `json:"student"`
}

// EvaluationResponse serializes an AI evaluation.
type EvaluationResponse struct {
	ID                 string                `json:"id"`
	SubmissionID       string                `json:"submission_id"`
	OverallScore       int                   `json:"overall_score"`
	PronunciationScore int                   `json:"pronunciation_score"`
	FluencyScore       int                   `json:"fluency_score"`
	VocabularyScore    int                   `json:"vocabulary_score"`
	GrammarScore       int                   `json:"grammar_score"`
	AIFeedback         models.FeedbackDetail `json:"ai_feedback"`
	CreatedAt          time.Time             `json:"created_at"`
}

// TeacherFeedbackResponse serializes a teacher feedback entry.
type TeacherFeedbackResponse struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	TeacherID    string    `json:"teacher_id"`
	Feedback     string    `json:"feedback"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmissionDetailResponse combines a submission with its evaluation and any
// teacher feedback.
type SubmissionDetailResponse struct {
	SubmissionResponse
	Evaluation *EvaluationResponse       `json:"evaluation,omitempty"`
	Feedback   []TeacherFeedbackResponse `json:"feedback,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:            model.ID,
		AssignmentID:  model.AssignmentID,
		StudentID:     model.StudentID,
		AudioURL:      model.AudioURL,
		Transcription: model.Transcription,
		Status:        model.Status,
		SubmittedAt:   model.SubmittedAt,
	}

	if model.Assignment.ID != "" {
		response.Assignment = AssignmentLite{
			ID:       model.Assignment.ID,
			Title:    model.Assignment.Title,
			TestType: model.Assignment.TestType,
		}
	}

	if model.Student.ID != "" {
		response.Student = StudentLite{
			ID:       model.Student.ID,
			Username: model.Student.Username,
			FullName: model.Student.FullName,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// NewEvaluationResponse converts an Evaluation model into a DTO.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:                 model.ID,
		SubmissionID:       model.SubmissionID,
		OverallScore:       model.OverallScore,
		PronunciationScore: model.PronunciationScore,
		FluencyScore:       model.FluencyScore,
		VocabularyScore:    model.VocabularyScore,
		GrammarScore:       model.GrammarScore,
		AIFeedback:         model.AIFeedback.Data(),
		CreatedAt:          model.CreatedAt,
	}
}

// NewEvaluationResponseSlice converts evaluation models into DTOs.
func NewEvaluationResponseSlice(evaluations []models.Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, NewEvaluationResponse(evaluation))
	}

	return responses
}

// NewTeacherFeedbackResponse converts a TeacherFeedback model into a DTO.
func NewTeacherFeedbackResponse(model models.TeacherFeedback) TeacherFeedbackResponse {
	return TeacherFeedbackResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		TeacherID:    model.TeacherID,
		Feedback:     model.Feedback,
		CreatedAt:    model.CreatedAt,
	}
}

// NewSubmissionDetailResponse converts a Submission with its associations
// into a detail DTO.
func NewSubmissionDetailResponse(model models.Submission) SubmissionDetailResponse {
	detail := SubmissionDetailResponse{
		SubmissionResponse: NewSubmissionResponse(model),
	}

	if model.Evaluation != nil {
		evaluation := NewEvaluationResponse(*model.Evaluation)
		detail.Evaluation = &evaluation
	}

	if len(model.Feedback) > 0 {
		feedback := make([]TeacherFeedbackResponse, 0, len(model.Feedback))
		for _, entry := range model.Feedback {
			feedback = append(feedback, NewTeacherFeedbackResponse(entry))
		}
		detail.Feedback = feedback
	}

	return detail
}
