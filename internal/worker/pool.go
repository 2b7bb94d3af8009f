package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"AssetCarePlatform/pkg/logger"
)

// Job представляет единицу работы для пула
type Job struct {
	ID  string
	Run func(ctx context.Context) error
}

// Result представляет результат выполнения одной единицы работы
type Result struct {
	JobID      string        `json:"job_id"`
	Err        error         `json:"-"`
	DurationMs int64         `json:"duration_ms"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"-"`
}

// Config конфигурация пула рабочих
type Config struct {
	// Количество рабочих
	WorkerCount int `json:"worker_count"`

	// Таймаут на одну единицу работы, ноль отключает таймаут
	JobTimeout time.Duration `json:"job_timeout"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		WorkerCount: 8,
		JobTimeout:  30 * time.Second,
	}
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.JobTimeout < 0 {
		return fmt.Errorf("job timeout must be non-negative")
	}
	return nil
}

// Pool выполняет пакеты независимых работ ограниченным числом рабочих.
// Ошибка одной работы не прерывает остальные.
type Pool struct {
	config *Config
	logger logger.Logger

	stats PoolStats
}

// PoolStats статистика пула
type PoolStats struct {
	JobsExecuted  int64 `json:"jobs_executed"`
	JobsSucceeded int64 `json:"jobs_succeeded"`
	JobsFailed    int64 `json:"jobs_failed"`
	TotalDuration int64 `json:"total_duration_ms"`
}

// NewPool создает новый пул рабочих
func NewPool(config *Config, log logger.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Pool{
		config: config,
		logger: log,
	}, nil
}

// ExecuteBatch выполняет все работы и возвращает результат каждой.
// Порядок результатов соответствует порядку работ. Отмена контекста
// помечает невыполненные работы ошибкой контекста.
func (p *Pool) ExecuteBatch(ctx context.Context, jobs []*Job) []*Result {
	if len(jobs) == 0 {
		return nil
	}

	workerCount := p.config.WorkerCount
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}

	p.logger.Debug("Executing job batch",
		logger.Int("job_count", len(jobs)),
		logger.Int("worker_count", workerCount))

	type indexedJob struct {
		index int
		job   *Job
	}

	jobChan := make(chan indexedJob)
	results := make([]*Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobChan {
				results[item.index] = p.runJob(ctx, item.job)
			}
		}()
	}

	for i, job := range jobs {
		jobChan <- indexedJob{index: i, job: job}
	}
	close(jobChan)

	wg.Wait()

	return results
}

// runJob выполняет одну работу с таймаутом и учетом статистики
func (p *Pool) runJob(ctx context.Context, job *Job) *Result {
	start := time.Now()

	result := &Result{JobID: job.ID}

	if err := ctx.Err(); err != nil {
		result.Err = err
	} else {
		jobCtx := ctx
		if p.config.JobTimeout > 0 {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(ctx, p.config.JobTimeout)
			defer cancel()
		}
		result.Err = job.Run(jobCtx)
	}

	result.Duration = time.Since(start)
	result.DurationMs = result.Duration.Milliseconds()
	result.FinishedAt = time.Now()

	atomic.AddInt64(&p.stats.JobsExecuted, 1)
	atomic.AddInt64(&p.stats.TotalDuration, result.DurationMs)
	if result.Err != nil {
		atomic.AddInt64(&p.stats.JobsFailed, 1)
		p.logger.Warn("Job failed",
			logger.String("job_id", job.ID),
			logger.Duration("duration", result.Duration),
			logger.Error(result.Err))
	} else {
		atomic.AddInt64(&p.stats.JobsSucceeded, 1)
	}

	return result
}

// GetStats возвращает статистику пула
func (p *Pool) GetStats() *PoolStats {
	return &PoolStats{
		JobsExecuted:  atomic.LoadInt64(&p.stats.JobsExecuted),
		JobsSucceeded: atomic.LoadInt64(&p.stats.JobsSucceeded),
		JobsFailed:    atomic.LoadInt64(&p.stats.JobsFailed),
		TotalDuration: atomic.LoadInt64(&p.stats.TotalDuration),
	}
}
