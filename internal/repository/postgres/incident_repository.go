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

// IncidentRepository реализация IncidentRepository в PostgreSQL
type IncidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository создает новый экземпляр IncidentRepository
func NewIncidentRepository(pool *pgxpool.Pool) repository.IncidentRepository {
	return &IncidentRepository{
		pool: pool,
	}
}

const incidentColumns = `
	id, equipment_id, title, description, severity, impact, category,
	reported_by_user_id, assigned_user_id, status, reported_at, assigned_at,
	resolved_at, closed_at, solution, actual_cost, requires_follow_up,
	equipment_suspended, version, created_at, updated_at
`

// Create создает инцидент
func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.New().String()
	}

	query := `
		INSERT INTO incidents (
			id, equipment_id, title, description, severity, impact, category,
			reported_by_user_id, assigned_user_id, status, reported_at, assigned_at,
			resolved_at, closed_at, solution, actual_cost, requires_follow_up,
			equipment_suspended, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		incident.ID,
		incident.EquipmentID,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Impact,
		incident.Category,
		incident.ReportedByUserID,
		nullableString(incident.AssignedUserID),
		incident.Status,
		incident.ReportedAt,
		incident.AssignedAt,
		incident.ResolvedAt,
		incident.ClosedAt,
		incident.Solution,
		incident.ActualCost,
		incident.RequiresFollowUp,
		incident.EquipmentSuspended,
		incident.Version,
		incident.CreatedAt,
		incident.UpdatedAt,
	)

	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create incident").
			WithDetails(fmt.Sprintf("incident_id: %s, equipment_id: %s", incident.ID, incident.EquipmentID)).
			WithContext(ctx)
	}

	return nil
}

// GetByID получает инцидент по ID
func (r *IncidentRepository) GetByID(ctx context.Context, incidentID string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	incident, err := scanIncident(querierFrom(ctx, r.pool).QueryRow(ctx, query, incidentID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrNotFound, "incident not found").
				WithDetails(fmt.Sprintf("incident_id: %s", incidentID)).
				WithContext(ctx)
		}
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to get incident").
			WithDetails(fmt.Sprintf("incident_id: %s", incidentID)).
			WithContext(ctx)
	}

	return incident, nil
}

// Update выполняет оптимистичное обновление инцидента.
// Запись обновляется только если версия не менялась с момента чтения.
func (r *IncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	query := `
		UPDATE incidents
		SET assigned_user_id = $1,
			status = $2,
			assigned_at = $3,
			resolved_at = $4,
			closed_at = $5,
			solution = $6,
			actual_cost = $7,
			requires_follow_up = $8,
			equipment_suspended = $9,
			version = version + 1,
			updated_at = $10
		WHERE id = $11 AND version = $12
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		nullableString(incident.AssignedUserID),
		incident.Status,
		incident.AssignedAt,
		incident.ResolvedAt,
		incident.ClosedAt,
		incident.Solution,
		incident.ActualCost,
		incident.RequiresFollowUp,
		incident.EquipmentSuspended,
		incident.UpdatedAt,
		incident.ID,
		incident.Version,
	)

	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to update incident").
			WithDetails(fmt.Sprintf("incident_id: %s", incident.ID)).
			WithContext(ctx)
	}

	if result.RowsAffected() == 0 {
		return errors.New(errors.ErrConcurrentModification, "incident was modified concurrently").
			WithDetails(fmt.Sprintf("incident_id: %s, version: %d", incident.ID, incident.Version)).
			WithContext(ctx)
	}

	incident.Version++
	return nil
}

// ListByEquipment получает инциденты одного оборудования
func (r *IncidentRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE equipment_id = $1 ORDER BY reported_at DESC`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, equipmentID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to list incidents by equipment").
			WithDetails(fmt.Sprintf("equipment_id: %s", equipmentID)).
			WithContext(ctx)
	}
	defer rows.Close()

	return scanIncidents(ctx, rows)
}

// ListByStatus получает инциденты в указанном статусе
func (r *IncidentRepository) ListByStatus(ctx context.Context, status domain.IncidentStatus) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE status = $1 ORDER BY reported_at ASC`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, status)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to list incidents by status").
			WithDetails(fmt.Sprintf("status: %s", status)).
			WithContext(ctx)
	}
	defer rows.Close()

	return scanIncidents(ctx, rows)
}

// scanIncident считывает один инцидент из строки результата
func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident
	var assignedUserID *string

	err := row.Scan(
		&incident.ID,
		&incident.EquipmentID,
		&incident.Title,
		&incident.Description,
		&incident.Severity,
		&incident.Impact,
		&incident.Category,
		&incident.ReportedByUserID,
		&assignedUserID,
		&incident.Status,
		&incident.ReportedAt,
		&incident.AssignedAt,
		&incident.ResolvedAt,
		&incident.ClosedAt,
		&incident.Solution,
		&incident.ActualCost,
		&incident.RequiresFollowUp,
		&incident.EquipmentSuspended,
		&incident.Version,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedUserID != nil {
		incident.AssignedUserID = *assignedUserID
	}
	return &incident, nil
}

// scanIncidents считывает все инциденты из результата запроса
func scanIncidents(ctx context.Context, rows pgx.Rows) ([]*domain.Incident, error) {
	var incidents []*domain.Incident
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to scan incident").
				WithContext(ctx)
		}
		incidents = append(incidents, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to iterate incidents").
			WithContext(ctx)
	}

	return incidents, nil
}
