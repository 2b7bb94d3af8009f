package service

import (
	"context"
	"time"

	"AssetCarePlatform/internal/domain"
	enginemetrics "AssetCarePlatform/internal/metrics"
	"AssetCarePlatform/pkg/errors"
	"AssetCarePlatform/pkg/logger"
)

// RiskService интерфейс агрегации риска по журналу аудита
type RiskService interface {
	// ComputeRiskScore агрегирует события аудита за окно в оценку риска
	ComputeRiskScore(ctx context.Context, window time.Duration) (*domain.RiskAssessment, error)
}

// riskService реализация RiskService
type riskService struct {
	auditLog        AuditLog
	clock           Clock
	upstreamTimeout time.Duration
	logger          logger.Logger
	metrics         *enginemetrics.EngineMetrics
}

// NewRiskService создает новый сервис оценки риска
func NewRiskService(auditLog AuditLog, clock Clock, upstreamTimeout time.Duration, log logger.Logger, metrics *enginemetrics.EngineMetrics) RiskService {
	if clock == nil {
		clock = SystemClock{}
	}
	if upstreamTimeout <= 0 {
		upstreamTimeout = 5 * time.Second
	}

	return &riskService{
		auditLog:        auditLog,
		clock:           clock,
		upstreamTimeout: upstreamTimeout,
		logger:          log,
		metrics:         metrics,
	}
}

// ComputeRiskScore агрегирует события аудита за окно наблюдения
func (s *riskService) ComputeRiskScore(ctx context.Context, window time.Duration) (*domain.RiskAssessment, error) {
	if window <= 0 {
		return nil, errors.New(errors.ErrValidation, "risk window must be positive").
			WithContext(ctx)
	}

	var events []domain.AuditEvent

	err := withUpstreamTimeout(ctx, s.upstreamTimeout, "audit log query", func(callCtx context.Context) error {
		var err error
		events, err = s.auditLog.Query(callCtx, window)
		return err
	})
	if err != nil {
		return nil, err
	}

	assessment := domain.ComputeRiskScore(events, s.clock.Now(), window)
	s.metrics.SetRiskScore(assessment.Score)

	s.logger.Info("Risk score computed",
		logger.Int("score", assessment.Score),
		logger.String("level", string(assessment.Level)),
		logger.Int("event_count", assessment.EventCount),
		logger.Duration("window", window))

	return assessment, nil
}
