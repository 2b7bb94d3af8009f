package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/internal/repository"
	"AssetCarePlatform/pkg/errors"
)

// TaskRepository реализация TaskRepository в PostgreSQL
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository создает новый экземпляр TaskRepository
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &TaskRepository{
		pool: pool,
	}
}

const taskColumns = `
	id, equipment_id, kind, scheduled_date, completed_date, status, priority,
	assigned_technician_id, actual_cost, actual_duration_minutes, notes,
	cancel_reason, version, created_at, updated_at
`

// Create создает задачу обслуживания
func (r *TaskRepository) Create(ctx context.Context, task *domain.MaintenanceTask) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	query := `
		INSERT INTO maintenance_tasks (
			id, equipment_id, kind, scheduled_date, completed_date, status, priority,
			assigned_technician_id, actual_cost, actual_duration_minutes, notes,
			cancel_reason, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		task.ID,
		task.EquipmentID,
		task.Kind,
		task.ScheduledDate,
		task.CompletedDate,
		task.Status,
		task.Priority,
		nullableString(task.AssignedTechnicianID),
		task.ActualCost,
		task.ActualDurationMinutes,
		task.Notes,
		task.CancelReason,
		task.Version,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create maintenance task").
			WithDetails(fmt.Sprintf("task_id: %s, equipment_id: %s", task.ID, task.EquipmentID)).
			WithContext(ctx)
	}

	return nil
}

// GetByID получает задачу по ID
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + ` FROM maintenance_tasks WHERE id = $1`

	task, err := scanTask(querierFrom(ctx, r.pool).QueryRow(ctx, query, taskID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrNotFound, "maintenance task not found").
				WithDetails(fmt.Sprintf("task_id: %s", taskID)).
				WithContext(ctx)
		}
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to get maintenance task").
			WithDetails(fmt.Sprintf("task_id: %s", taskID)).
			WithContext(ctx)
	}

	return task, nil
}

// Update выполняет оптимистичное обновление задачи.
// Запись обновляется только если версия не менялась с момента чтения.
func (r *TaskRepository) Update(ctx context.Context, task *domain.MaintenanceTask) error {
	query := `
		UPDATE maintenance_tasks
		SET completed_date = $1,
			status = $2,
			priority = $3,
			assigned_technician_id = $4,
			actual_cost = $5,
			actual_duration_minutes = $6,
			notes = $7,
			cancel_reason = $8,
			version = version + 1,
			updated_at = $9
		WHERE id = $10 AND version = $11
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		task.CompletedDate,
		task.Status,
		task.Priority,
		nullableString(task.AssignedTechnicianID),
		task.ActualCost,
		task.ActualDurationMinutes,
		task.Notes,
		task.CancelReason,
		task.UpdatedAt,
		task.ID,
		task.Version,
	)

	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to update maintenance task").
			WithDetails(fmt.Sprintf("task_id: %s", task.ID)).
			WithContext(ctx)
	}

	if result.RowsAffected() == 0 {
		return errors.New(errors.ErrConcurrentModification, "maintenance task was modified concurrently").
			WithDetails(fmt.Sprintf("task_id: %s, version: %d", task.ID, task.Version)).
			WithContext(ctx)
	}

	task.Version++
	return nil
}

// ListByEquipment получает задачи одного оборудования
func (r *TaskRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + ` FROM maintenance_tasks WHERE equipment_id = $1 ORDER BY scheduled_date ASC`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, equipmentID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to list tasks by equipment").
			WithDetails(fmt.Sprintf("equipment_id: %s", equipmentID)).
			WithContext(ctx)
	}
	defer rows.Close()

	return scanTasks(ctx, rows)
}

// ListScheduled получает все незавершенные запланированные задачи
func (r *TaskRepository) ListScheduled(ctx context.Context) ([]*domain.MaintenanceTask, error) {
	query := `SELECT ` + taskColumns + ` FROM maintenance_tasks WHERE status = $1 ORDER BY scheduled_date ASC`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, domain.TaskStatusScheduled)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to list scheduled tasks").
			WithContext(ctx)
	}
	defer rows.Close()

	return scanTasks(ctx, rows)
}

// scanTask считывает одну задачу из строки результата
func scanTask(row pgx.Row) (*domain.MaintenanceTask, error) {
	var task domain.MaintenanceTask
	var technicianID *string

	err := row.Scan(
		&task.ID,
		&task.EquipmentID,
		&task.Kind,
		&task.ScheduledDate,
		&task.CompletedDate,
		&task.Status,
		&task.Priority,
		&technicianID,
		&task.ActualCost,
		&task.ActualDurationMinutes,
		&task.Notes,
		&task.CancelReason,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if technicianID != nil {
		task.AssignedTechnicianID = *technicianID
	}
	return &task, nil
}

// scanTasks считывает все задачи из результата запроса
func scanTasks(ctx context.Context, rows pgx.Rows) ([]*domain.MaintenanceTask, error) {
	var tasks []*domain.MaintenanceTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to scan maintenance task").
				WithContext(ctx)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to iterate maintenance tasks").
			WithContext(ctx)
	}

	return tasks, nil
}

// nullableString преобразует пустую строку в NULL
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
