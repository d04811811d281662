// Package authz centralises the role and ownership checks that gate every
// operation on the platform. Authorize is a pure function of the actor, the
// operation and the target's ownership facts, so it can be tested without any
// transport or storage in place.
package authz

import (
	"errors"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
)

// ErrUnauthenticated is returned when no actor identity is present.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden is returned when the actor may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// Operation identifies a guarded action.
type Operation string

// Guarded operations.
const (
	OpViewAssignment   Operation = "assignment.view"
	OpCreateAssignment Operation = "assignment.create"
	OpDeleteAssignment Operation = "assignment.delete"

	OpCreateSubmission Operation = "submission.create"
	OpViewSubmission   Operation = "submission.view"

	OpProvideFeedback Operation = "feedback.provide"

	OpViewTeacherDashboard Operation = "teacher.dashboard"
	OpListStudents         Operation = "teacher.students"

	OpListAllUsers       Operation = "admin.users"
	OpListAllAssignments Operation = "admin.assignments"
	OpListAllSubmissions Operation = "admin.submissions"
	OpListAllEvaluations Operation = "admin.evaluations"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role string
}

// Target carries the ownership facts of the entity an operation touches.
// Callers load the entity first and pass the relevant owner ids; operations
// without a target use the zero value.
type Target struct {
	// TeacherID is the owner of the assignment the target belongs to.
	TeacherID string
	// StudentID is the owner of the submission.
	StudentID string
}

// roleAllowList is the first gate: which roles may attempt an operation at
// all. Ownership is checked afterwards where the list alone is insufficient.
var roleAllowList = map[Operation][]string{
	OpViewAssignment:   {models.RoleTeacher, models.RoleStudent, models.RoleAdmin},
	OpCreateAssignment: {models.RoleTeacher},
	OpDeleteAssignment: {models.RoleTeacher},

	OpCreateSubmission: {models.RoleStudent},
	OpViewSubmission:   {models.RoleTeacher, models.RoleStudent, models.RoleAdmin},

	OpProvideFeedback: {models.RoleTeacher},

	OpViewTeacherDashboard: {models.RoleTeacher},
	OpListStudents:         {models.RoleTeacher},

	OpListAllUsers:       {models.RoleAdmin},
	OpListAllAssignments: {models.RoleAdmin},
	OpListAllSubmissions: {models.RoleAdmin},
	OpListAllEvaluations: {models.RoleAdmin},
}

// Authorize decides whether the actor may perform op on target. It returns
// nil on allow, ErrUnauthenticated when the actor is missing, and
// ErrForbidden otherwise.
func Authorize(actor Actor, op Operation, target Target) error {
	if actor.ID == "" || actor.Role == "" {
		return ErrUnauthenticated
	}

	allowed, known := roleAllowList[op]
	if !known {
		return ErrForbidden
	}

	roleOK := false
	for _, role := range allowed {
		if actor.Role == role {
			roleOK = true
			break
		}
	}
	if !roleOK {
		return ErrForbidden
	}

	switch op {
	case OpDeleteAssignment, OpProvideFeedback:
		// Teachers only reach entities under assignments they own.
		if actor.ID != target.TeacherID {
			return ErrForbidden
		}
	case OpViewSubmission:
		switch actor.Role {
		case models.RoleStudent:
			if actor.ID != target.StudentID {
				return ErrForbidden
			}
		case models.RoleTeacher:
			if actor.ID != target.TeacherID {
				return ErrForbidden
			}
		}
	}

	return nil
}
