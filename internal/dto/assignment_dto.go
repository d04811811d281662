package dto

import (
	"time"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

// AssignmentCreateRequest is the payload for authoring an assignment.
type AssignmentCreateRequest struct {
	Title        string     `json:"title" validate:"required,min=3,max=255"`
	Description  string     `json:"description" validate:"required"`
	TestType     string     `json:"test_type" validate:"required,oneof=OET IELTS 'Business English'"`
	DueDate      *time.Time `json:"due_date"`
	Instructions string     `json:"instructions"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID           string     `json:"id"`
	TeacherID    string     `json:"teacher_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TestType     string     `json:"test_type"`
	DueDate      *time.Time `json:"due_date"`
	Instructions string     `json:"instructions"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           model.ID,
		TeacherID:    model.TeacherID,
		Title:        model.Title,
		Description:  model.Description,
		TestType:     model.TestType,
		DueDate:      model.DueDate,
		Instructions: model.Instructions,
		CreatedAt:    model.CreatedAt,
	}
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
