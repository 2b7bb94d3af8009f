package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/internal/service"
	"AssetCarePlatform/pkg/errors"
	"AssetCarePlatform/pkg/logger"
)

// stubMaintenance подменяет MaintenanceService фиксированными ответами
type stubMaintenance struct {
	task           *domain.MaintenanceTask
	tasks          []*domain.MaintenanceTask
	classification *domain.ScheduleClassification
	err            error
}

func (s *stubMaintenance) Schedule(ctx context.Context, req *service.ScheduleRequest) (*domain.MaintenanceTask, error) {
	return s.task, s.err
}

func (s *stubMaintenance) Complete(ctx context.Context, req *service.CompleteRequest) (*domain.MaintenanceTask, error) {
	return s.task, s.err
}

func (s *stubMaintenance) Cancel(ctx context.Context, taskID, reason string) (*domain.MaintenanceTask, error) {
	return s.task, s.err
}

func (s *stubMaintenance) PlanBulk(ctx context.Context, req *service.PlanBulkRequest) (*service.PlanBulkResult, error) {
	return &service.PlanBulkResult{}, s.err
}

func (s *stubMaintenance) ClassifySchedule(ctx context.Context, alertWindowDays int) (*domain.ScheduleClassification, error) {
	return s.classification, s.err
}

func (s *stubMaintenance) ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.MaintenanceTask, error) {
	return s.tasks, s.err
}

// stubRisk подменяет RiskService фиксированным ответом
type stubRisk struct {
	assessment *domain.RiskAssessment
	err        error
}

func (s *stubRisk) ComputeRiskScore(ctx context.Context, window time.Duration) (*domain.RiskAssessment, error) {
	return s.assessment, s.err
}

func newTestHandler(t *testing.T, maintenance service.MaintenanceService, risk service.RiskService) *EngineHandler {
	t.Helper()

	log, err := logger.NewLogger("development", "error", "handler-test")
	require.NoError(t, err)

	return NewEngineHandler(maintenance, nil, risk, log)
}

func TestScheduleTaskEndpoint(t *testing.T) {
	t.Run("created task is returned with 201", func(t *testing.T) {
		task := &domain.MaintenanceTask{
			ID:     "task-1",
			Status: domain.TaskStatusScheduled,
			Kind:   domain.MaintenanceKindPreventive,
		}
		h := newTestHandler(t, &stubMaintenance{task: task}, nil)

		mux := http.NewServeMux()
		h.Register(mux)

		body := `{"equipment_id":"eq-1","kind":"preventive","scheduled_date":"2030-06-01T00:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var got domain.MaintenanceTask
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "task-1", got.ID)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		h := newTestHandler(t, &stubMaintenance{err: errors.New(errors.ErrValidation, "kind is invalid")}, nil)

		mux := http.NewServeMux()
		h.Register(mux)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), string(errors.ErrValidation))
	})

	t.Run("concurrent modification maps to 409", func(t *testing.T) {
		h := newTestHandler(t, &stubMaintenance{err: errors.New(errors.ErrConcurrentModification, "task was modified concurrently")}, nil)

		mux := http.NewServeMux()
		h.Register(mux)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/complete", strings.NewReader(`{"task_id":"task-1"}`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		h := newTestHandler(t, &stubMaintenance{}, nil)

		mux := http.NewServeMux()
		h.Register(mux)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListTasksEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubMaintenance{
		tasks: []*domain.MaintenanceTask{{ID: "task-1"}, {ID: "task-2"}},
	}, nil)

	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?equipment_id=eq-1", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []*domain.MaintenanceTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestClassifyScheduleEndpoint(t *testing.T) {
	classification := &domain.ScheduleClassification{
		Overdue: []*domain.MaintenanceTask{{ID: "task-1"}},
	}
	h := newTestHandler(t, &stubMaintenance{classification: classification}, nil)

	mux := http.NewServeMux()
	h.Register(mux)

	t.Run("returns classification", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?window_days=14", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got domain.ScheduleClassification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got.Overdue, 1)
	})

	t.Run("bad window is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?window_days=abc", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRiskEndpoint(t *testing.T) {
	assessment := &domain.RiskAssessment{Score: 55, Level: domain.RiskLevelHigh}
	h := newTestHandler(t, nil, &stubRisk{assessment: assessment})

	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/risk?window_hours=48", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 55, got.Score)
	assert.Equal(t, domain.RiskLevelHigh, got.Level)
}
