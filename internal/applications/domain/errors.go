package domain

import "errors"

var (
	ErrNotFound        = errors.New("application not found")
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
	ErrAlreadyDecided  = errors.New("application already decided")
	ErrProjectMismatch = errors.New("application does not belong to project")
	ErrDuplicate       = errors.New("seeker already applied to this project")
)
