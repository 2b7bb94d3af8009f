package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"AssetCarePlatform/pkg/metrics"
)

// EngineMetrics содержит метрики движка обслуживания
type EngineMetrics struct {
	// Базовые метрики из pkg
	base *metrics.Metrics

	// Метрики задач обслуживания
	taskOperations *prometheus.CounterVec
	taskErrors     *prometheus.CounterVec
	overdueTasks   prometheus.Gauge
	dueSoonTasks   prometheus.Gauge

	// Метрики инцидентов
	incidentOperations *prometheus.CounterVec
	incidentEscalated  prometheus.Counter
	triageScore        prometheus.Histogram

	// Метрики риска
	riskScore prometheus.Gauge

	// Длительности операций движка
	operationDuration *prometheus.HistogramVec
}

// NewEngineMetrics создает новый экземпляр метрик движка
func NewEngineMetrics(serviceName string) *EngineMetrics {
	base := metrics.NewMetrics(serviceName)

	taskOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "maintenance",
			Name:      "task_operations_total",
			Help:      "Total number of maintenance task operations",
		},
		[]string{"operation", "kind", "status"},
	)

	taskErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "maintenance",
			Name:      "task_errors_total",
			Help:      "Total number of maintenance task operation errors",
		},
		[]string{"operation", "error_code"},
	)

	overdueTasks := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "maintenance",
			Name:      "overdue_tasks",
			Help:      "Number of overdue scheduled maintenance tasks",
		},
	)

	dueSoonTasks := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "maintenance",
			Name:      "due_soon_tasks",
			Help:      "Number of maintenance tasks due within the alert window",
		},
	)

	incidentOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "incident",
			Name:      "operations_total",
			Help:      "Total number of incident operations",
		},
		[]string{"operation", "severity"},
	)

	incidentEscalated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "incident",
			Name:      "escalations_total",
			Help:      "Total number of incidents that suspended equipment",
		},
	)

	triageScore := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "incident",
			Name:      "triage_score",
			Help:      "Distribution of computed incident triage scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90},
		},
	)

	riskScore := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "risk",
			Name:      "score",
			Help:      "Latest aggregated audit risk score",
		},
	)

	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Duration of engine operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registerMetric(taskOperations)
	registerMetric(taskErrors)
	registerMetric(overdueTasks)
	registerMetric(dueSoonTasks)
	registerMetric(incidentOperations)
	registerMetric(incidentEscalated)
	registerMetric(triageScore)
	registerMetric(riskScore)
	registerMetric(operationDuration)

	return &EngineMetrics{
		base:               base,
		taskOperations:     taskOperations,
		taskErrors:         taskErrors,
		overdueTasks:       overdueTasks,
		dueSoonTasks:       dueSoonTasks,
		incidentOperations: incidentOperations,
		incidentEscalated:  incidentEscalated,
		triageScore:        triageScore,
		riskScore:          riskScore,
		operationDuration:  operationDuration,
	}
}

// registerMetric безопасно регистрирует метрику
func registerMetric(collector prometheus.Collector) {
	if err := prometheus.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			panic(err)
		}
	}
}

// RecordTaskOperation записывает операцию над задачей обслуживания
func (em *EngineMetrics) RecordTaskOperation(operation, kind, status string) {
	em.taskOperations.WithLabelValues(operation, kind, status).Inc()
}

// RecordTaskError записывает ошибку операции над задачей
func (em *EngineMetrics) RecordTaskError(operation, errorCode string) {
	em.taskErrors.WithLabelValues(operation, errorCode).Inc()
}

// SetScheduleGauges записывает результаты классификации расписания
func (em *EngineMetrics) SetScheduleGauges(overdue, dueSoon int) {
	em.overdueTasks.Set(float64(overdue))
	em.dueSoonTasks.Set(float64(dueSoon))
}

// RecordIncidentOperation записывает операцию над инцидентом
func (em *EngineMetrics) RecordIncidentOperation(operation, severity string) {
	em.incidentOperations.WithLabelValues(operation, severity).Inc()
}

// RecordEscalation записывает автоэскалацию с выводом оборудования из эксплуатации
func (em *EngineMetrics) RecordEscalation() {
	em.incidentEscalated.Inc()
}

// RecordTriageScore записывает вычисленную оценку приоритета
func (em *EngineMetrics) RecordTriageScore(score int) {
	em.triageScore.Observe(float64(score))
}

// SetRiskScore записывает последнюю оценку риска
func (em *EngineMetrics) SetRiskScore(score int) {
	em.riskScore.Set(float64(score))
}

// RecordOperationDuration записывает длительность операции движка
func (em *EngineMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	em.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Base возвращает базовые метрики для HTTP слоя
func (em *EngineMetrics) Base() *metrics.Metrics {
	return em.base
}
