package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/dto"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/repository"
)

// AdminService exposes platform-wide read-only listings to administrators.
type AdminService interface {
	ListUsers(ctx context.Context, actor authz.Actor) ([]dto.UserResponse, error)
	ListAssignments(ctx context.Context, actor authz.Actor) ([]dto.AssignmentResponse, error)
	ListSubmissions(ctx context.Context, actor authz.Actor) ([]dto.SubmissionResponse, error)
	ListEvaluations(ctx context.Context, actor authz.Actor) ([]dto.EvaluationResponse, error)
}

type adminService struct {
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	evaluations repository.EvaluationRepository
	logger      zerolog.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(users repository.UserRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, evaluations repository.EvaluationRepository, logger zerolog.Logger) AdminService {
	return &adminService{
		users:       users,
		assignments: assignments,
		submissions: submissions,
		evaluations: evaluations,
		logger:      logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) ListUsers(ctx context.Context, actor authz.Actor) ([]dto.UserResponse, error) {
	if err := authz.Authorize(actor, authz.OpListAllUsers, authz.Target{}); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *adminService) ListAssignments(ctx context.Context, actor authz.Actor) ([]dto.AssignmentResponse, error) {
	if err := authz.Authorize(actor, authz.OpListAllAssignments, authz.Target{}); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *adminService) ListSubmissions(ctx context.Context, actor authz.Actor) ([]dto.SubmissionResponse, error) {
	if err := authz.Authorize(actor, authz.OpListAllSubmissions, authz.Target{}); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *adminService) ListEvaluations(ctx context.Context, actor authz.Actor) ([]dto.EvaluationResponse, error) {
	if err := authz.Authorize(actor, authz.OpListAllEvaluations, authz.Target{}); err != nil {
		return nil, err
	}

	evaluations, err := s.evaluations.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewEvaluationResponseSlice(evaluations), nil
}
