package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opsboard/opsboard-backend/internal/core/domain"
	"github.com/opsboard/opsboard-backend/internal/core/ports"
)

// StatsRepository reads the aggregate task counts a stream client uses to
// initialize its view. The tasks table itself is written by the surrounding
// dashboard backend; this subsystem only queries it.
type StatsRepository struct {
	pool *pgxpool.Pool
}

var _ ports.StatsRepository = (*StatsRepository)(nil)

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(pool *pgxpool.Pool) ports.StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetTaskStats returns current task counts grouped by department, status and
// priority.
func (r *StatsRepository) GetTaskStats(ctx context.Context) (*domain.TaskStats, error) {
	stats := domain.NewTaskStats()

	byDepartment, total, err := r.fetchGroupedCounts(ctx, `
SELECT department_id, COUNT(*)
FROM tasks
GROUP BY department_id
`)
	if err != nil {
		return nil, err
	}
	stats.ByDepartment = byDepartment
	stats.Total = total

	byStatus, _, err := r.fetchGroupedCounts(ctx, `
SELECT status, COUNT(*)
FROM tasks
GROUP BY status
`)
	if err != nil {
		return nil, err
	}
	stats.ByStatus = byStatus

	byPriority, _, err := r.fetchGroupedCounts(ctx, `
SELECT priority, COUNT(*)
FROM tasks
GROUP BY priority
`)
	if err != nil {
		return nil, err
	}
	stats.ByPriority = byPriority

	return stats, nil
}

func (r *StatsRepository) fetchGroupedCounts(ctx context.Context, query string) (map[string]int64, int64, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	var total int64

	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, 0, err
		}
		counts[key] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return counts, total, nil
}
