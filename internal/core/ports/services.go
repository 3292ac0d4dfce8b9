package ports

import (
	"github.com/google/uuid"
	"github.com/opsboard/opsboard-backend/internal/core/domain"
)

// EmitParams defines the input the external task-mutation layer hands to the
// broadcast subsystem when a task changes.
type EmitParams struct {
	Kind         domain.EventKind
	TaskID       int64
	DepartmentID string
	AssigneeID   *uuid.UUID
	Payload      any
}

// EventPublisher is the sole entry point for injecting task events into the
// broadcast subsystem. Emit is synchronous: it returns once the fan-out sweep
// has completed. Delivery is best effort; an error is returned only for
// contract violations such as an unknown event kind, never for per-consumer
// delivery failures.
type EventPublisher interface {
	Emit(params EmitParams) error
}
