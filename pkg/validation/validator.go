package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validator предоставляет общие функции валидации
type Validator struct{}

// NewValidator создает новый Validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUUID проверяет формат UUID
func (v *Validator) ValidateUUID(value string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("invalid %s format: %w", fieldName, err)
	}

	return nil
}

// ValidateEnum проверяет значение на соответствие enum
func (v *Validator) ValidateEnum(value string, allowedValues []string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}

	return fmt.Errorf("invalid %s: %s, allowed values: %v", fieldName, value, allowedValues)
}

// ValidateStringLength проверяет длину строки
func (v *Validator) ValidateStringLength(value, fieldName string, min, max int) error {
	length := len(value)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters, got: %d", fieldName, min, length)
	}
	if length > max {
		return fmt.Errorf("%s must not exceed %d characters, got: %d", fieldName, max, length)
	}
	return nil
}

// ValidateDate проверяет дату обслуживания
func (v *Validator) ValidateDate(ts time.Time, fieldName string) error {
	if ts.IsZero() {
		return fmt.Errorf("%s cannot be zero", fieldName)
	}

	// Разумные границы для дат планового обслуживания
	if ts.Year() < 2000 || ts.Year() > 2100 {
		return fmt.Errorf("%s is out of supported range: %s", fieldName, ts.Format("2006-01-02"))
	}

	return nil
}

// ValidateScore проверяет числовую оценку в заданных границах
func (v *Validator) ValidateScore(score int, min, max int, fieldName string) error {
	if score < min {
		return fmt.Errorf("%s must be at least %d, got: %d", fieldName, min, score)
	}
	if score > max {
		return fmt.Errorf("%s must not exceed %d, got: %d", fieldName, max, score)
	}
	return nil
}

// ValidateCronExpression выполняет базовую валидацию cron выражения с секундами
func (v *Validator) ValidateCronExpression(cronExpr string) error {
	if cronExpr == "" {
		return fmt.Errorf("cron expression cannot be empty")
	}

	// Планировщик использует формат с секундами, 6 полей
	fields := strings.Fields(cronExpr)
	if len(fields) != 6 {
		return fmt.Errorf("cron expression must have exactly 6 fields (second minute hour day month weekday), got %d", len(fields))
	}

	for i, field := range fields {
		if field == "*" {
			continue
		}

		for _, char := range field {
			if !((char >= '0' && char <= '9') || char == ',' || char == '-' || char == '/' || char == '*') {
				return fmt.Errorf("invalid character '%c' in cron expression field %d", char, i+1)
			}
		}
	}

	return nil
}

// ValidateWindowDays проверяет окно предупреждения в днях
func (v *Validator) ValidateWindowDays(days int) error {
	if days < 0 {
		return fmt.Errorf("alert window must not be negative, got: %d", days)
	}
	if days > 365 {
		return fmt.Errorf("alert window must not exceed 365 days, got: %d", days)
	}
	return nil
}
