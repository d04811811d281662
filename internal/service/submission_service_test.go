package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/authz"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/dto"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

type submissionServiceFixture struct {
	submissions *memorySubmissionRepo
	assignments *memoryAssignmentRepo
	store       *stubStore
	scheduler   *recordingScheduler
	svc         SubmissionService
}

func newSubmissionServiceFixture(t *testing.T) *submissionServiceFixture {
	t.Helper()
	submissions := newMemorySubmissionRepo()
	assignments := newMemoryAssignmentRepo()
	store := newStubStore()
	scheduler := &recordingScheduler{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	require.NoError(t, assignments.Create(context.Background(), &models.Assignment{
		ID:          "assignment-1",
		TeacherID:   "teacher-1",
		Title:       "Telephone roleplay",
		Description: "call the clinic",
		TestType:    models.TestTypeOET,
	}))

	return &submissionServiceFixture{
		submissions: submissions,
		assignments: assignments,
		store:       store,
		scheduler:   scheduler,
		svc:         NewSubmissionService(submissions, assignments, store, scheduler, validate, testLogger()),
	}
}

func TestSubmissionServiceCreateSchedulesEvaluation(t *testing.T) {
	f := newSubmissionServiceFixture(t)
	student := authz.Actor{ID: "student-1", Role: models.RoleStudent}

	file := buildFileHeader(t, "answer.mp3", mp3Bytes())
	created, err := f.svc.Create(context.Background(), student, "assignment-1", file)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.Equal(t, "student-1", created.StudentID)
	require.NotEmpty(t, created.AudioURL)
	require.Equal(t, []string{created.ID}, f.scheduler.scheduled())
}

func TestSubmissionServiceCreateRejectsTeachers(t *testing.T) {
	f := newSubmissionServiceFixture(t)
	teacher := authz.Actor{ID: "teacher-1", Role: models.RoleTeacher}

	file := buildFileHeader(t, "answer.mp3", mp3Bytes())
	_, err := f.svc.Create(context.Background(), teacher, "assignment-1", file)
	require.ErrorIs(t, err, authz.ErrForbidden)
	require.Empty(t, f.scheduler.scheduled())
}

func TestSubmissionServiceCreateRejectsUnknownAssignment(t *testing.T) {
	f := newSubmissionServiceFixture(t)
	student := authz.Actor{ID: "student-1", Role: models.RoleStudent}

	file := buildFileHeader(t, "answer.mp3", mp3Bytes())
	_, err := f.svc.Create(context.Background(), student, "missing-assignment", file)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmissionServiceCreateRejectsNonAudio(t *testing.T) {
	f := newSubmissionServiceFixture(t)
	student := authz.Actor{ID: "student-1", Role: models.RoleStudent}

	file := buildFileHeader(t, "essay.txt", []byte("this is plain text, not audio"))
	_, err := f.svc.Create(context.Background(), student, "assignment-1", file)
	require.ErrorIs(t, err, ErrUnsupportedAudio)
	require.Empty(t, f.scheduler.scheduled())
}

func seedVisibilitySubmissions(f *submissionServiceFixture) {
	f.submissions.put(models.Submission{
		ID: "sub-own", AssignmentID: "assignment-1", StudentID: "student-1",
		Status: models.SubmissionStatusPending, SubmittedAt: time.Now(),
		Assignment: models.Assignment{ID: "assignment-1", TeacherID: "teacher-1"},
	})
	f.submissions.put(models.Submission{
		ID: "sub-other", AssignmentID: "assignment-2", StudentID: "student-2",
		Status: models.SubmissionStatusEvaluated, SubmittedAt: time.Now().Add(-time.Hour),
		Assignment: models.Assignment{ID: "assignment-2", TeacherID: "teacher-2"},
	})
}

func TestSubmissionServiceGetEnforcesOwnership(t *testing.T) {
	f := newSubmissionServiceFixture(t)
	seedVisibilitySubmissions(f)

	owner := authz.Actor{ID: "student-1", Role: models.RoleStudent}
	found, err := f.svc.Get(context.Background(), owner, "sub-own")
	require.NoError(t, err)
	require.Equal(t, "sub-own", found.ID)

	_, err = f.svc.Get(context.Background(), owner, "sub-other")
	require.ErrorIs(t, err, authz.ErrForbidden)

	owningTeacher := authz.Actor{ID: "teacher-1", Role: models.RoleTeacher}
	_, err = f.svc.Get(context.Background(), owningTeacher, "sub-own")
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), owningTeacher, "sub-other")
	require.ErrorIs(t, err, authz.ErrForbidden)

	admin := authz.Actor{ID: "admin-1", Role: models.RoleAdmin}
	_, err = f.svc.Get(context.Background(), admin, "sub-other")
	require.NoError(t, err)
}

func TestSubmissionServiceGetMissing(t *testing.T) {
	f := newSubmissionServiceFixture(t)

	admin := authz.Actor{ID: "admin-1", Role: models.RoleAdmin}
	_, err := f.svc.Get(context.Background(), admin, "nope")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionServiceListScopesByRole(t *testing.T) {
	f := newSubmissionServiceFixture(t)
	seedVisibilitySubmissions(f)

	student := authz.Actor{ID: "student-1", Role: models.RoleStudent}
	own, err := f.svc.List(context.Background(), student, dto.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "sub-own", own[0].ID)

	// A student cannot widen the scope by filtering on another student.
	other := "student-2"
	widened, err := f.svc.List(context.Background(), student, dto.SubmissionFilter{StudentID: &other})
	require.NoError(t, err)
	require.Len(t, widened, 1)
	require.Equal(t, "sub-own", widened[0].ID)

	teacher := authz.Actor{ID: "teacher-2", Role: models.RoleTeacher}
	taught, err := f.svc.List(context.Background(), teacher, dto.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, taught, 1)
	require.Equal(t, "sub-other", taught[0].ID)

	admin := authz.Actor{ID: "admin-1", Role: models.RoleAdmin}
	all, err := f.svc.List(context.Background(), admin, dto.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	anonymous := authz.Actor{}
	_, err = f.svc.List(context.Background(), anonymous, dto.SubmissionFilter{})
	require.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestSubmissionServiceListValidatesStatusFilter(t *testing.T) {
	f := newSubmissionServiceFixture(t)

	bogus := "archived"
	admin := authz.Actor{ID: "admin-1", Role: models.RoleAdmin}
	_, err := f.svc.List(context.Background(), admin, dto.SubmissionFilter{Status: &bogus})
	require.Error(t, err)
}
