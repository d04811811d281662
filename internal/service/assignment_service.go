package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/dto"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/repository"
)

// ErrAssignmentNotFound indicates an assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService orchestrates assignment workflows.
type AssignmentService interface {
	List(ctx context.Context, actor authz.Actor) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, actor authz.Actor, id string) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor authz.Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

// List returns assignments scoped to the actor: teachers see their own,
// students and admins see the full catalogue.
func (s *assignmentService) List(ctx context.Context, actor authz.Actor) ([]dto.AssignmentResponse, error) {
	if err := authz.Authorize(actor, authz.OpViewAssignment, authz.Target{}); err != nil {
		return nil, err
	}

	var (
		assignments []models.Assignment
		err         error
	)
	if actor.Role == models.RoleTeacher {
		assignments, err = s.assignments.ListByTeacher(ctx, actor.ID)
	} else {
		assignments, err = s.assignments.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, actor authz.Actor, id string) (dto.AssignmentResponse, error) {
	if err := authz.Authorize(actor, authz.OpViewAssignment, authz.Target{}); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor authz.Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := authz.Authorize(actor, authz.OpCreateAssignment, authz.Target{}); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		TeacherID:    actor.ID,
		Title:        payload.Title,
		Description:  payload.Description,
		TestType:     payload.TestType,
		DueDate:      payload.DueDate,
		Instructions: payload.Instructions,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Str("assignment_id", assignment.ID).Str("teacher_id", actor.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

// Delete removes an assignment the actor owns, cascading to its submissions.
func (s *assignmentService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if err := authz.Authorize(actor, authz.OpDeleteAssignment, authz.Target{TeacherID: assignment.TeacherID}); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Str("assignment_id", id).Str("teacher_id", actor.ID).Msg("assignment deleted")

	return nil
}
