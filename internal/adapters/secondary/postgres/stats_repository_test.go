package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertTask(t *testing.T, ctx context.Context, department, status, priority string, assignee *uuid.UUID) int64 {
	t.Helper()

	var id int64
	err := testPool.QueryRow(ctx, `
INSERT INTO tasks (title, department_id, status, priority, assignee_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, "task-"+uuid.NewString(), department, status, priority, assignee).Scan(&id)
	require.NoError(t, err)
	return id
}

func truncateTasks(t *testing.T, ctx context.Context) {
	t.Helper()
	_, err := testPool.Exec(ctx, `TRUNCATE tasks RESTART IDENTITY`)
	require.NoError(t, err)
}

func TestStatsRepository_GetTaskStats(t *testing.T) {
	ctx := context.Background()
	repo := NewStatsRepository(testPool)

	t.Run("empty table yields zero totals and empty groups", func(t *testing.T) {
		truncateTasks(t, ctx)

		stats, err := repo.GetTaskStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Total)
		assert.Empty(t, stats.ByDepartment)
		assert.Empty(t, stats.ByStatus)
		assert.Empty(t, stats.ByPriority)
	})

	t.Run("counts group by department, status and priority", func(t *testing.T) {
		truncateTasks(t, ctx)

		assignee := uuid.New()
		insertTask(t, ctx, "design", "TODO", "HIGH", &assignee)
		insertTask(t, ctx, "design", "IN_PROGRESS", "MEDIUM", nil)
		insertTask(t, ctx, "ops", "TODO", "LOW", nil)

		stats, err := repo.GetTaskStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(2), stats.ByDepartment["design"])
		assert.Equal(t, int64(1), stats.ByDepartment["ops"])
		assert.Equal(t, int64(2), stats.ByStatus["TODO"])
		assert.Equal(t, int64(1), stats.ByStatus["IN_PROGRESS"])
		assert.Equal(t, int64(1), stats.ByPriority["HIGH"])
		assert.Equal(t, int64(1), stats.ByPriority["MEDIUM"])
		assert.Equal(t, int64(1), stats.ByPriority["LOW"])
	})
}
