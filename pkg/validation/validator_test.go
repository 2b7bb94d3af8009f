package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateUUID(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid uuid", "550e8400-e29b-41d4-a716-446655440000", false},
		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"truncated", "550e8400-e29b-41d4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUUID(tt.value, "equipment_id")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEnum(t *testing.T) {
	v := NewValidator()
	allowed := []string{"preventive", "corrective", "calibration"}

	assert.NoError(t, v.ValidateEnum("preventive", allowed, "kind"))
	assert.Error(t, v.ValidateEnum("unknown", allowed, "kind"))
	assert.Error(t, v.ValidateEnum("", allowed, "kind"))
}

func TestValidateDate(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateDate(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "due_date"))
	assert.Error(t, v.ValidateDate(time.Time{}, "due_date"))
	assert.Error(t, v.ValidateDate(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), "due_date"))
	assert.Error(t, v.ValidateDate(time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), "due_date"))
}

func TestValidateScore(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateScore(50, 0, 100, "risk_score"))
	assert.Error(t, v.ValidateScore(-1, 0, 100, "risk_score"))
	assert.Error(t, v.ValidateScore(101, 0, 100, "risk_score"))
}

func TestValidateCronExpression(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"valid with seconds", "0 */5 * * * *", false},
		{"five fields", "*/5 * * * *", true},
		{"empty", "", true},
		{"invalid characters", "0 */5 * * * abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCronExpression(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWindowDays(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateWindowDays(7))
	assert.NoError(t, v.ValidateWindowDays(0))
	assert.Error(t, v.ValidateWindowDays(-1))
	assert.Error(t, v.ValidateWindowDays(400))
}
