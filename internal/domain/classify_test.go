package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledTask(id string, scheduledDate time.Time) *MaintenanceTask {
	return &MaintenanceTask{
		ID:            id,
		EquipmentID:   "eq-1",
		Kind:          MaintenanceKindPreventive,
		ScheduledDate: scheduledDate,
		Status:        TaskStatusScheduled,
	}
}

func TestClassifySchedule(t *testing.T) {
	now := date(2024, time.January, 10)

	t.Run("overdue task is not due soon", func(t *testing.T) {
		// Задача на 2024-01-01 при now=2024-01-10 и окне 7 дней просрочена
		tasks := []*MaintenanceTask{scheduledTask("t1", date(2024, time.January, 1))}

		result := ClassifySchedule(tasks, now, 7)

		require.Len(t, result.Overdue, 1)
		assert.Empty(t, result.DueSoon)
		assert.Empty(t, result.OnTrack)
		assert.Equal(t, "t1", result.Overdue[0].ID)
	})

	t.Run("task inside alert window is due soon", func(t *testing.T) {
		tasks := []*MaintenanceTask{scheduledTask("t1", date(2024, time.January, 15))}

		result := ClassifySchedule(tasks, now, 7)

		assert.Empty(t, result.Overdue)
		require.Len(t, result.DueSoon, 1)
		assert.Empty(t, result.OnTrack)
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		tasks := []*MaintenanceTask{
			scheduledTask("today", now),
			scheduledTask("window-edge", date(2024, time.January, 17)),
		}

		result := ClassifySchedule(tasks, now, 7)

		assert.Empty(t, result.Overdue)
		assert.Len(t, result.DueSoon, 2)
		assert.Empty(t, result.OnTrack)
	})

	t.Run("task beyond window is on track", func(t *testing.T) {
		tasks := []*MaintenanceTask{scheduledTask("t1", date(2024, time.January, 18))}

		result := ClassifySchedule(tasks, now, 7)

		assert.Empty(t, result.Overdue)
		assert.Empty(t, result.DueSoon)
		assert.Len(t, result.OnTrack, 1)
	})

	t.Run("terminal and in progress tasks are excluded", func(t *testing.T) {
		completed := scheduledTask("c", date(2024, time.January, 1))
		completed.Status = TaskStatusCompleted
		cancelled := scheduledTask("x", date(2024, time.January, 1))
		cancelled.Status = TaskStatusCancelled
		inProgress := scheduledTask("p", date(2024, time.January, 1))
		inProgress.Status = TaskStatusInProgress

		result := ClassifySchedule([]*MaintenanceTask{completed, cancelled, inProgress}, now, 7)

		assert.Equal(t, 0, result.Total())
	})

	t.Run("partition is total and disjoint", func(t *testing.T) {
		tasks := []*MaintenanceTask{
			scheduledTask("a", date(2023, time.December, 20)),
			scheduledTask("b", date(2024, time.January, 9)),
			scheduledTask("c", now),
			scheduledTask("d", date(2024, time.January, 14)),
			scheduledTask("e", date(2024, time.February, 1)),
			scheduledTask("f", date(2024, time.June, 1)),
		}

		result := ClassifySchedule(tasks, now, 7)

		assert.Equal(t, len(tasks), result.Total())

		seen := make(map[string]int)
		for _, task := range result.Overdue {
			seen[task.ID]++
		}
		for _, task := range result.DueSoon {
			seen[task.ID]++
		}
		for _, task := range result.OnTrack {
			seen[task.ID]++
		}
		for _, task := range tasks {
			assert.Equal(t, 1, seen[task.ID], "task %s must appear exactly once", task.ID)
		}
	})

	t.Run("zero window puts only today in due soon", func(t *testing.T) {
		tasks := []*MaintenanceTask{
			scheduledTask("today", now),
			scheduledTask("tomorrow", date(2024, time.January, 11)),
		}

		result := ClassifySchedule(tasks, now, 0)

		require.Len(t, result.DueSoon, 1)
		assert.Equal(t, "today", result.DueSoon[0].ID)
		require.Len(t, result.OnTrack, 1)
		assert.Equal(t, "tomorrow", result.OnTrack[0].ID)
	})
}
