package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownEventKind is returned when a producer emits an event kind outside
// the closed set below.
var ErrUnknownEventKind = errors.New("unknown event kind")

// EventKind identifies what happened to a task. The set is closed; producers
// emitting anything else are rejected.
type EventKind string

const (
	EventTaskCreated  EventKind = "created"
	EventTaskUpdated  EventKind = "updated"
	EventTaskDeleted  EventKind = "deleted"
	EventTaskAssigned EventKind = "assigned"
	EventTaskProgress EventKind = "progress"
	EventTaskComment  EventKind = "comment"
)

// ParseEventKind validates a raw kind string against the closed set.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventTaskCreated, EventTaskUpdated, EventTaskDeleted,
		EventTaskAssigned, EventTaskProgress, EventTaskComment:
		return k, nil
	default:
		return "", ErrUnknownEventKind
	}
}

// TaskEvent is one task-related occurrence pushed to stream subscribers.
// It is a value type and is never mutated after construction.
type TaskEvent struct {
	Kind         EventKind  `json:"kind"`
	TaskID       int64      `json:"taskId"`
	DepartmentID string     `json:"departmentId"`
	AssigneeID   *uuid.UUID `json:"assigneeId,omitempty"`
	Payload      any        `json:"payload,omitempty"`
	OccurredAt   time.Time  `json:"occurredAt"`
}
