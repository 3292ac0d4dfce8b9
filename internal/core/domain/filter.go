package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// SubscriptionFilter is the predicate a client supplies at connect time.
// An empty dimension means "all". Matching is conjunctive across dimensions
// and disjunctive within one.
type SubscriptionFilter struct {
	Departments []string    `json:"departments,omitempty"`
	Assignees   []uuid.UUID `json:"assignees,omitempty"`
	Kinds       []EventKind `json:"kinds,omitempty"`
}

// NewSubscriptionFilter validates raw filter values as parsed from the
// connect request. Unknown event kinds and malformed assignee IDs are
// rejected before any connection state is created.
func NewSubscriptionFilter(departments, assignees, kinds []string) (SubscriptionFilter, error) {
	f := SubscriptionFilter{}

	for _, d := range departments {
		if d == "" {
			return SubscriptionFilter{}, fmt.Errorf("empty department id in filter")
		}
		f.Departments = append(f.Departments, d)
	}

	for _, a := range assignees {
		id, err := uuid.Parse(a)
		if err != nil {
			return SubscriptionFilter{}, fmt.Errorf("invalid assignee id %q: %w", a, err)
		}
		f.Assignees = append(f.Assignees, id)
	}

	for _, k := range kinds {
		kind, err := ParseEventKind(k)
		if err != nil {
			return SubscriptionFilter{}, fmt.Errorf("invalid event kind %q: %w", k, err)
		}
		f.Kinds = append(f.Kinds, kind)
	}

	return f, nil
}

// Matches reports whether the event passes every non-empty dimension of the
// filter. Events without an assignee pass the assignee check only when that
// dimension is empty.
func (f SubscriptionFilter) Matches(e TaskEvent) bool {
	return f.matchesDepartment(e) && f.matchesAssignee(e) && f.matchesKind(e)
}

func (f SubscriptionFilter) matchesDepartment(e TaskEvent) bool {
	if len(f.Departments) == 0 {
		return true
	}
	for _, d := range f.Departments {
		if d == e.DepartmentID {
			return true
		}
	}
	return false
}

func (f SubscriptionFilter) matchesAssignee(e TaskEvent) bool {
	if len(f.Assignees) == 0 {
		return true
	}
	if e.AssigneeID == nil {
		return false
	}
	for _, a := range f.Assignees {
		if a == *e.AssigneeID {
			return true
		}
	}
	return false
}

func (f SubscriptionFilter) matchesKind(e TaskEvent) bool {
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if k == e.Kind {
			return true
		}
	}
	return false
}
