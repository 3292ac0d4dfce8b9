package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard-backend/internal/core/domain"
)

func TestNewSubscriptionFilter(t *testing.T) {
	t.Run("empty inputs yield match-all filter", func(t *testing.T) {
		f, err := domain.NewSubscriptionFilter(nil, nil, nil)

		require.NoError(t, err)
		assert.Empty(t, f.Departments)
		assert.Empty(t, f.Assignees)
		assert.Empty(t, f.Kinds)
	})

	t.Run("valid values are carried over", func(t *testing.T) {
		assignee := uuid.New()

		f, err := domain.NewSubscriptionFilter(
			[]string{"design", "ops"},
			[]string{assignee.String()},
			[]string{"created", "comment"},
		)

		require.NoError(t, err)
		assert.Equal(t, []string{"design", "ops"}, f.Departments)
		assert.Equal(t, []uuid.UUID{assignee}, f.Assignees)
		assert.Equal(t, []domain.EventKind{domain.EventTaskCreated, domain.EventTaskComment}, f.Kinds)
	})

	t.Run("unknown event kind is rejected", func(t *testing.T) {
		_, err := domain.NewSubscriptionFilter(nil, nil, []string{"exploded"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnknownEventKind)
	})

	t.Run("malformed assignee id is rejected", func(t *testing.T) {
		_, err := domain.NewSubscriptionFilter(nil, []string{"not-a-uuid"}, nil)

		assert.Error(t, err)
	})

	t.Run("empty department id is rejected", func(t *testing.T) {
		_, err := domain.NewSubscriptionFilter([]string{""}, nil, nil)

		assert.Error(t, err)
	})
}

func TestSubscriptionFilter_Matches(t *testing.T) {
	assignee := uuid.New()
	other := uuid.New()

	event := func(kind domain.EventKind, dept string, who *uuid.UUID) domain.TaskEvent {
		return domain.TaskEvent{
			Kind:         kind,
			TaskID:       42,
			DepartmentID: dept,
			AssigneeID:   who,
		}
	}

	t.Run("empty filter matches everything", func(t *testing.T) {
		f := domain.SubscriptionFilter{}

		assert.True(t, f.Matches(event(domain.EventTaskCreated, "design", nil)))
		assert.True(t, f.Matches(event(domain.EventTaskComment, "ops", &assignee)))
	})

	t.Run("department dimension", func(t *testing.T) {
		f := domain.SubscriptionFilter{Departments: []string{"design"}}

		assert.True(t, f.Matches(event(domain.EventTaskCreated, "design", nil)))
		assert.False(t, f.Matches(event(domain.EventTaskCreated, "ops", nil)))
	})

	t.Run("kind dimension", func(t *testing.T) {
		f := domain.SubscriptionFilter{Kinds: []domain.EventKind{domain.EventTaskComment}}

		assert.True(t, f.Matches(event(domain.EventTaskComment, "design", nil)))
		assert.False(t, f.Matches(event(domain.EventTaskUpdated, "design", nil)))
	})

	t.Run("assignee dimension", func(t *testing.T) {
		f := domain.SubscriptionFilter{Assignees: []uuid.UUID{assignee}}

		assert.True(t, f.Matches(event(domain.EventTaskAssigned, "design", &assignee)))
		assert.False(t, f.Matches(event(domain.EventTaskAssigned, "design", &other)))
	})

	t.Run("assignee-less event passes only an empty assignee filter", func(t *testing.T) {
		unfiltered := domain.SubscriptionFilter{}
		filtered := domain.SubscriptionFilter{Assignees: []uuid.UUID{assignee}}

		unassigned := event(domain.EventTaskCreated, "design", nil)

		assert.True(t, unfiltered.Matches(unassigned))
		assert.False(t, filtered.Matches(unassigned))
	})

	t.Run("dimensions are conjunctive", func(t *testing.T) {
		f := domain.SubscriptionFilter{
			Departments: []string{"design"},
			Kinds:       []domain.EventKind{domain.EventTaskCreated},
		}

		assert.True(t, f.Matches(event(domain.EventTaskCreated, "design", nil)))
		// Right department, wrong kind.
		assert.False(t, f.Matches(event(domain.EventTaskDeleted, "design", nil)))
		// Right kind, wrong department.
		assert.False(t, f.Matches(event(domain.EventTaskCreated, "ops", nil)))
	})
}

func TestParseEventKind(t *testing.T) {
	valid := []string{"created", "updated", "deleted", "assigned", "progress", "comment"}
	for _, raw := range valid {
		kind, err := domain.ParseEventKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, domain.EventKind(raw), kind)
	}

	_, err := domain.ParseEventKind("renamed")
	assert.ErrorIs(t, err, domain.ErrUnknownEventKind)
}
