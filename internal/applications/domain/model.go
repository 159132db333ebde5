package domain

import "time"

// Status is where an application sits in the owner's review.
type Status string

const (
	StatusInReview Status = "in review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known application status.
func (s Status) Valid() bool {
	switch s {
	case StatusInReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Decision is the owner's verdict on an application.
type Decision string

const (
	DecisionApprove Decision = "approved"
	DecisionReject  Decision = "rejected"
)

// ParseDecision accepts the two terminal statuses.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	}
	return "", ErrInvalidDecision
}

// Application is a seeker's request to work on a project.
type Application struct {
	ID        int64     `json:"application_id,omitempty"`
	Status    Status    `json:"application_status"`
	AppliedAt time.Time `json:"application_date"`
	SeekerID  string    `json:"seeker_id"`
	ProjectID int64     `json:"project_id"`
}

// Summary is an application joined with the project it targets, as the
// seeker's list shows it.
type Summary struct {
	Application
	ProjectTitle string  `json:"project_title"`
	ProjectDesc  string  `json:"project_desc"`
	ProjectFee   float64 `json:"project_fee"`
}
