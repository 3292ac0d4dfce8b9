package ports

import (
	"context"

	"github.com/opsboard/opsboard-backend/internal/core/domain"
)

// StatsRepository defines the read boundary to the relational task store.
// The store itself (task rows, history, CRUD) is owned by the surrounding
// dashboard backend; this subsystem only reads the aggregate snapshot sent
// to a client on connect.
type StatsRepository interface {
	GetTaskStats(ctx context.Context) (*domain.TaskStats, error)
}
