package dto

// AssignmentProgress summarizes submission progress for one assignment.
type AssignmentProgress struct {
	AssignmentID    string   `json:"assignment_id"`
	Title           string   `json:"title"`
	TestType        string   `json:"test_type"`
	SubmissionCount int      `json:"submission_count"`
	EvaluatedCount  int      `json:"evaluated_count"`
	AverageScore    *float64 `json:"average_score"`
}

// TeacherDashboardResponse aggregates progress across a teacher's assignments.
type TeacherDashboardResponse struct {
	TotalAssignments int                  `json:"total_assignments"`
	TotalSubmissions int                  `json:"total_submissions"`
	PendingCount     int                  `json:"pending_count"`
	EvaluatedCount   int                  `json:"evaluated_count"`
	FeedbackCount    int                  `json:"feedback_count"`
	AverageScore     *float64             `json:"average_score"`
	Assignments      []AssignmentProgress `json:"assignments"`
}
