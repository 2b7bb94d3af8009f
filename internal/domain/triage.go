package domain

import "time"

// Вклады серьезности в оценку приоритета
var severityPoints = map[Severity]int{
	SeverityLow:      10,
	SeverityMedium:   20,
	SeverityHigh:     30,
	SeverityCritical: 40,
}

// Вклады влияния в оценку приоритета, вклад ограничен 30 баллами
var impactPoints = map[Impact]int{
	ImpactNone:     5,
	ImpactLow:      10,
	ImpactMedium:   20,
	ImpactHigh:     30,
	ImpactCritical: 30,
}

// TriageScore вычисляет приоритет инцидента из серьезности, влияния и возраста.
// Оценка аддитивная, применяется только старшая возрастная надбавка.
func TriageScore(severity Severity, impact Impact, reportedAt, now time.Time) int {
	score := severityPoints[severity] + impactPoints[impact]

	age := now.Sub(reportedAt)
	switch {
	case age > 24*time.Hour:
		score += 20
	case age > 8*time.Hour:
		score += 10
	}

	return score
}

// SeverityPoints возвращает вклад серьезности в оценку
func SeverityPoints(severity Severity) int {
	return severityPoints[severity]
}

// ImpactPoints возвращает вклад влияния в оценку
func ImpactPoints(impact Impact) int {
	return impactPoints[impact]
}
