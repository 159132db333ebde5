package domain

import "errors"

// Type distinguishes the signup workspace from project workspaces.
type Type string

const (
	TypePrivate Type = "private"
	TypeProject Type = "project"
)

// PrivateWorkspaceName is the name every user's signup workspace gets.
const PrivateWorkspaceName = "My Workspace"

var (
	ErrNotFound  = errors.New("workspace not found")
	ErrNotMember = errors.New("workspace belongs to other users")
	ErrDuplicate = errors.New("project workspace already exists")
)

// Workspace is a container of boards shared by its owner and, for project
// workspaces, the approved seeker.
type Workspace struct {
	ID        int64   `json:"workspace_id,omitempty"`
	Name      string  `json:"workspace_name"`
	Type      Type    `json:"workspace_type"`
	ProjectID *int64  `json:"project_id"`
	UserID    string  `json:"user_id"`
	SeekerID  *string `json:"seeker_id"`
}

// NewPrivate returns the workspace created for a user at sign-up.
func NewPrivate(userID string) *Workspace {
	return &Workspace{Name: PrivateWorkspaceName, Type: TypePrivate, UserID: userID}
}

// NewProject returns the workspace created when an owner approves a seeker.
func NewProject(projectID int64, title, ownerID, seekerID string) *Workspace {
	return &Workspace{
		Name:      title,
		Type:      TypeProject,
		ProjectID: &projectID,
		UserID:    ownerID,
		SeekerID:  &seekerID,
	}
}

// HasMember reports whether userID is the workspace owner or its seeker.
func (w *Workspace) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	return w.UserID == userID || (w.SeekerID != nil && *w.SeekerID == userID)
}
