package domain

import "time"

// ScheduleClassification представляет результат классификации задач по срокам
type ScheduleClassification struct {
	Overdue []*MaintenanceTask `json:"overdue"`
	DueSoon []*MaintenanceTask `json:"due_soon"`
	OnTrack []*MaintenanceTask `json:"on_track"`
}

// ClassifySchedule разбивает запланированные задачи на просроченные, близкие к сроку и плановые.
// Терминальные задачи и задачи в работе исключаются. Каждая запланированная задача
// попадает ровно в одну категорию.
func ClassifySchedule(tasks []*MaintenanceTask, now time.Time, alertWindowDays int) *ScheduleClassification {
	result := &ScheduleClassification{
		Overdue: make([]*MaintenanceTask, 0),
		DueSoon: make([]*MaintenanceTask, 0),
		OnTrack: make([]*MaintenanceTask, 0),
	}

	windowEnd := now.AddDate(0, 0, alertWindowDays)

	for _, task := range tasks {
		if task.Status != TaskStatusScheduled {
			continue
		}

		switch {
		case task.ScheduledDate.Before(now):
			result.Overdue = append(result.Overdue, task)
		case !task.ScheduledDate.After(windowEnd):
			result.DueSoon = append(result.DueSoon, task)
		default:
			result.OnTrack = append(result.OnTrack, task)
		}
	}

	return result
}

// Total возвращает общее число классифицированных задач
func (c *ScheduleClassification) Total() int {
	return len(c.Overdue) + len(c.DueSoon) + len(c.OnTrack)
}
