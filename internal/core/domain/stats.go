package domain

// TaskStatus represents the possible states of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusReview     TaskStatus = "REVIEW"
	StatusDone       TaskStatus = "DONE"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// TaskStats is the aggregate snapshot sent to a client right after connect,
// before any live deltas arrive.
type TaskStats struct {
	Total        int64            `json:"total"`
	ByDepartment map[string]int64 `json:"byDepartment"`
	ByStatus     map[string]int64 `json:"byStatus"`
	ByPriority   map[string]int64 `json:"byPriority"`
}

// NewTaskStats returns a stats value with all grouping maps initialized, so
// JSON encoding always renders objects rather than null.
func NewTaskStats() *TaskStats {
	return &TaskStats{
		ByDepartment: make(map[string]int64),
		ByStatus:     make(map[string]int64),
		ByPriority:   make(map[string]int64),
	}
}
