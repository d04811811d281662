package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/dto"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/repository"
)

// TeacherDashboardService aggregates submission progress across a teacher's
// assignments. Responses are cached; dashboards may read slightly stale data.
type TeacherDashboardService interface {
	GetDashboard(ctx context.Context, actor authz.Actor) (dto.TeacherDashboardResponse, error)
	ListStudents(ctx context.Context, actor authz.Actor) ([]dto.UserResponse, error)
}

type teacherDashboardService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewTeacherDashboardService builds the dashboard aggregator. cache may be
// nil, in which case every call recomputes.
func NewTeacherDashboardService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, users repository.UserRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) TeacherDashboardService {
	return &teacherDashboardService{
		assignments: assignments,
		submissions: submissions,
		users:       users,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "teacher_dashboard_service").Logger(),
	}
}

func (s *teacherDashboardService) GetDashboard(ctx context.Context, actor authz.Actor) (dto.TeacherDashboardResponse, error) {
	if err := authz.Authorize(actor, authz.OpViewTeacherDashboard, authz.Target{}); err != nil {
		return dto.TeacherDashboardResponse{}, err
	}

	cacheKey := fmt.Sprintf("dashboard:teacher:%s", actor.ID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.TeacherDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("teacher_id", actor.ID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	assignments, err := s.assignments.ListByTeacher(ctx, actor.ID)
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{TeacherID: &actor.ID})
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}

	response := buildTeacherDashboard(assignments, submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *teacherDashboardService) ListStudents(ctx context.Context, actor authz.Actor) ([]dto.UserResponse, error) {
	if err := authz.Authorize(actor, authz.OpListStudents, authz.Target{}); err != nil {
		return nil, err
	}

	students, err := s.users.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(students), nil
}

func buildTeacherDashboard(assignments []models.Assignment, submissions []models.Submission) dto.TeacherDashboardResponse {
	response := dto.TeacherDashboardResponse{
		TotalAssignments: len(assignments),
		TotalSubmissions: len(submissions),
		Assignments:      make([]dto.AssignmentProgress, 0, len(assignments)),
	}

	type stats struct {
		submissions int
		evaluated   int
		scoreTotal  int
	}
	perAssignment := map[string]*stats{}

	var scoreTotal, scoredCount int
	for _, submission := range submissions {
		entry, ok := perAssignment[submission.AssignmentID]
		if !ok {
			entry = &stats{}
			perAssignment[submission.AssignmentID] = entry
		}
		entry.submissions++

		switch submission.Status {
		case models.SubmissionStatusPending:
			response.PendingCount++
		case models.SubmissionStatusEvaluated:
			response.EvaluatedCount++
		case models.SubmissionStatusFeedbackProvided:
			response.FeedbackCount++
		}

		if submission.Evaluation != nil {
			entry.evaluated++
			entry.scoreTotal += submission.Evaluation.OverallScore
			scoreTotal += submission.Evaluation.OverallScore
			scoredCount++
		}
	}

	if scoredCount > 0 {
		average := float64(scoreTotal) / float64(scoredCount)
		response.AverageScore = &average
	}

	for _, assignment := range assignments {
		progress := dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			TestType:     assignment.TestType,
		}
		if entry, ok := perAssignment[assignment.ID]; ok {
			progress.SubmissionCount = entry.submissions
			progress.EvaluatedCount = entry.evaluated
			if entry.evaluated > 0 {
				average := float64(entry.scoreTotal) / float64(entry.evaluated)
				progress.AverageScore = &average
			}
		}
		response.Assignments = append(response.Assignments, progress)
	}

	return response
}
