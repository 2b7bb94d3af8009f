package domain

import "time"

// RiskLevel представляет категориальный уровень системного риска
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// Вклады событий аудита в оценку риска
var auditRiskPoints = map[AuditRiskLevel]int{
	AuditRiskLow:    3,
	AuditRiskMedium: 10,
	AuditRiskHigh:   20,
}

// maxRiskScore ограничивает суммарную оценку риска
const maxRiskScore = 100

// RiskAssessment представляет агрегированную оценку риска за окно наблюдения
type RiskAssessment struct {
	Score           int       `json:"score"`
	Level           RiskLevel `json:"level"`
	EventCount      int       `json:"event_count"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
	Recommendations []string  `json:"recommendations"`
}

// ComputeRiskScore агрегирует события аудита за окно в ограниченную оценку риска.
// События за пределами окна игнорируются.
func ComputeRiskScore(events []AuditEvent, now time.Time, window time.Duration) *RiskAssessment {
	windowStart := now.Add(-window)

	score := 0
	count := 0
	for _, event := range events {
		if event.Timestamp.Before(windowStart) || event.Timestamp.After(now) {
			continue
		}
		score += auditRiskPoints[event.RiskLevel]
		count++
	}

	if score > maxRiskScore {
		score = maxRiskScore
	}

	level := riskLevelFor(score)

	return &RiskAssessment{
		Score:           score,
		Level:           level,
		EventCount:      count,
		WindowStart:     windowStart,
		WindowEnd:       now,
		Recommendations: recommendationsFor(level),
	}
}

// riskLevelFor отображает числовую оценку в уровень риска
func riskLevelFor(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskLevelCritical
	case score >= 50:
		return RiskLevelHigh
	case score >= 30:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// recommendationsFor возвращает рекомендации оператору для уровня риска
func recommendationsFor(level RiskLevel) []string {
	switch level {
	case RiskLevelCritical:
		return []string{
			"review high-risk audit events immediately",
			"restrict privileged access until the review is complete",
			"notify the security officer",
		}
	case RiskLevelHigh:
		return []string{
			"review high-risk audit events within one business day",
			"verify recent privileged account activity",
		}
	case RiskLevelMedium:
		return []string{
			"review flagged audit events during the next shift",
		}
	default:
		return nil
	}
}
