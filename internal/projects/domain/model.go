package domain

import "time"

// Status is the project's availability for new applications.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusInReview    Status = "in review"
	StatusUnavailable Status = "unavailable"
)

// Valid reports whether s is one of the known project statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInReview, StatusUnavailable:
		return true
	}
	return false
}

// Project is a unit of work posted by an owner.
// JSON names follow the hosted table's column names.
type Project struct {
	ID          int64     `json:"project_id,omitempty"`
	Title       string    `json:"project_title"`
	Description string    `json:"project_desc"`
	Deadline    time.Time `json:"project_deadline"`
	Fee         float64   `json:"project_fee"`
	Status      Status    `json:"project_status"`
	CreatedAt   time.Time `json:"project_date_created"`
	OwnerID     string    `json:"owner_id"`
}

// CreateProjectRequest carries the owner's form input.
type CreateProjectRequest struct {
	OwnerID     string
	Title       string
	Description string
	Deadline    time.Time
	Fee         float64
}
