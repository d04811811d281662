package dto

// FeedbackRequest is the payload for posting teacher feedback on a submission.
type FeedbackRequest struct {
	SubmissionID string `json:"submission_id" validate:"required,uuid4"`
	Feedback     string `json:"feedback" validate:"required,min=3"`
}
