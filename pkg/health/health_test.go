package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// degradedChecker возвращает деградированный статус для тестов
type degradedChecker struct{}

func (d *degradedChecker) Check() *HealthStatus {
	return &HealthStatus{
		Status:    "degraded",
		Timestamp: time.Now(),
		Services: map[string]Status{
			"database": {Status: "unhealthy", Details: "connection refused"},
		},
	}
}

func TestSimpleHealthChecker(t *testing.T) {
	checker := NewSimpleHealthChecker("1.2.3")
	status := checker.Check()

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Second)
}

func TestCompositeHealthChecker(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		checker := NewCompositeHealthChecker("1.2.3", time.Second)
		checker.AddCheck("postgres", func(ctx context.Context) error { return nil })
		checker.AddCheck("redis", func(ctx context.Context) error { return nil })

		status := checker.Check()

		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, "healthy", status.Services["postgres"].Status)
		assert.Equal(t, "healthy", status.Services["redis"].Status)
	})

	t.Run("one failing dependency marks the service unhealthy", func(t *testing.T) {
		checker := NewCompositeHealthChecker("1.2.3", time.Second)
		checker.AddCheck("postgres", func(ctx context.Context) error { return nil })
		checker.AddCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })

		status := checker.Check()

		assert.Equal(t, "unhealthy", status.Status)
		assert.Equal(t, "healthy", status.Services["postgres"].Status)
		assert.Equal(t, "unhealthy", status.Services["redis"].Status)
		assert.Equal(t, "connection refused", status.Services["redis"].Details)
	})
}

func TestHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	Handler(NewSimpleHealthChecker("test"))(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
}

func TestReadyHandler(t *testing.T) {
	t.Run("healthy service returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		ReadyHandler(NewSimpleHealthChecker("test"))(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("degraded service returns 503", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		ReadyHandler(&degradedChecker{})(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLiveHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()

	LiveHandler()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alive", body["status"])
}
