package domain

import "errors"

var (
	ErrNotFound      = errors.New("project not found")
	ErrInvalidStatus = errors.New("invalid project status")
	ErrInvalidInput  = errors.New("invalid project input")
	ErrNotOwner      = errors.New("project belongs to another owner")
)
