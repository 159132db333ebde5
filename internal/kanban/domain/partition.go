package domain

import "fmt"

// Columns is a board's activities split by status.
type Columns struct {
	Todo       []Activity `json:"todo"`
	InProgress []Activity `json:"in_progress"`
	Done       []Activity `json:"done"`
}

// Bucket returns the column for s, or nil for an unknown status.
func (c *Columns) Bucket(s Status) *[]Activity {
	switch s {
	case StatusTodo:
		return &c.Todo
	case StatusInProgress:
		return &c.InProgress
	case StatusDone:
		return &c.Done
	}
	return nil
}

// Len is the number of activities across all columns.
func (c Columns) Len() int {
	return len(c.Todo) + len(c.InProgress) + len(c.Done)
}

// Partition places every activity in exactly one column, keeping input order
// within each column. An activity with an unknown status fails the whole
// partition.
func Partition(activities []Activity) (Columns, error) {
	cols := Columns{
		Todo:       []Activity{},
		InProgress: []Activity{},
		Done:       []Activity{},
	}
	for _, a := range activities {
		b := cols.Bucket(a.Status)
		if b == nil {
			return Columns{}, fmt.Errorf("%w: activity %d has %q", ErrInvalidStatus, a.ID, a.Status)
		}
		*b = append(*b, a)
	}
	return cols, nil
}
