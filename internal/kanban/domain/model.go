package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrBoardNotFound    = errors.New("board not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrInvalidStatus    = errors.New("activity status must be todo, in progress or done")
	ErrInvalidInput     = errors.New("invalid kanban input")
	ErrForbidden        = errors.New("not a member of this workspace")
)

// Status is the kanban column an activity sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in progress"
	StatusDone       Status = "done"
)

// Statuses lists the columns in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Board groups activities inside a workspace.
type Board struct {
	ID          int64  `json:"board_id,omitempty"`
	Title       string `json:"board_title"`
	WorkspaceID int64  `json:"workspace_id"`
}

// Activity is a kanban card.
type Activity struct {
	ID          int64      `json:"activity_id,omitempty"`
	Name        string     `json:"activity_name"`
	Description *string    `json:"activity_desc"`
	Status      Status     `json:"activity_status"`
	StartDate   *time.Time `json:"activity_startdate"`
	EndDate     *time.Time `json:"activity_enddate"`
	BoardID     int64      `json:"board_id"`
}

// Validate checks the fields every stored activity must satisfy.
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: activity name is required", ErrInvalidInput)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, a.Status)
	}
	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	return nil
}

// Nullable is a patch field that tells an absent key from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Clear is a Nullable that resets the field.
func Clear[T any]() Nullable[T] { return Nullable[T]{Set: true} }

// Of is a Nullable that sets the field to v.
func Of[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) apply(dst **T) {
	if n.Set {
		*dst = n.Value
	}
}

// ActivityPatch carries the editable fields of an activity. Absent fields
// are left unchanged; a null description or date clears it.
type ActivityPatch struct {
	Name        *string             `json:"activity_name"`
	Description Nullable[string]    `json:"activity_desc"`
	Status      *Status             `json:"activity_status"`
	StartDate   Nullable[time.Time] `json:"activity_startdate"`
	EndDate     Nullable[time.Time] `json:"activity_enddate"`
}

// Apply returns a copy of a with the patch applied.
func (p ActivityPatch) Apply(a Activity) Activity {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	p.Description.apply(&a.Description)
	p.StartDate.apply(&a.StartDate)
	p.EndDate.apply(&a.EndDate)
	return a
}
