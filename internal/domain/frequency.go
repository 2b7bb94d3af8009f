package domain

import "time"

// FrequencyCode представляет код периодичности обслуживания
type FrequencyCode string

const (
	FrequencyMonthly    FrequencyCode = "monthly"
	FrequencyBimonthly  FrequencyCode = "bimonthly"
	FrequencyQuarterly  FrequencyCode = "quarterly"
	FrequencySemiannual FrequencyCode = "semiannual"
	FrequencyAnnual     FrequencyCode = "annual"
)

// frequencyMonths отображает код периодичности в интервал в месяцах
var frequencyMonths = map[FrequencyCode]int{
	FrequencyMonthly:    1,
	FrequencyBimonthly:  2,
	FrequencyQuarterly:  3,
	FrequencySemiannual: 6,
	FrequencyAnnual:     12,
}

// IsValidFrequencyCode проверяет известность кода периодичности
func IsValidFrequencyCode(code string) bool {
	_, ok := frequencyMonths[FrequencyCode(code)]
	return ok
}

// FrequencyIntervalMonths возвращает интервал в месяцах для кода периодичности.
// Неизвестный код трактуется как quarterly.
func FrequencyIntervalMonths(code string) int {
	if months, ok := frequencyMonths[FrequencyCode(code)]; ok {
		return months
	}
	return frequencyMonths[FrequencyQuarterly]
}

// NextDueDate вычисляет следующую дату обслуживания от базовой даты.
// Арифметика календарная, конец месяца прижимается к последнему дню.
func NextDueDate(baseline time.Time, frequencyCode string) time.Time {
	return addMonthsClamped(baseline, FrequencyIntervalMonths(frequencyCode))
}

// addMonthsClamped прибавляет месяцы без перетекания в следующий месяц.
// 31 января + 1 месяц дает 28/29 февраля, а не 2/3 марта.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month())
	if day > lastDay {
		day = lastDay
	}

	hour, min, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysInMonth возвращает число дней в месяце
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
