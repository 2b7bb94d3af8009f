package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/internal/repository"
	"AssetCarePlatform/pkg/errors"
)

// EquipmentRepository реализация EquipmentRepository в PostgreSQL.
// Таблица оборудования принадлежит внешнему CRUD сервису, движок
// читает справочные поля и пишет только даты обслуживания и статус.
type EquipmentRepository struct {
	pool *pgxpool.Pool
}

// NewEquipmentRepository создает новый экземпляр EquipmentRepository
func NewEquipmentRepository(pool *pgxpool.Pool) repository.EquipmentRepository {
	return &EquipmentRepository{
		pool: pool,
	}
}

// Get получает справочные данные об оборудовании
func (r *EquipmentRepository) Get(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	query := `
		SELECT id, name, maintenance_frequency_code, last_maintenance_date,
			next_maintenance_date, requires_calibration, risk_class, status
		FROM equipment
		WHERE id = $1
	`

	var equipment domain.Equipment

	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, equipmentID).Scan(
		&equipment.ID,
		&equipment.Name,
		&equipment.MaintenanceFrequencyCode,
		&equipment.LastMaintenanceDate,
		&equipment.NextMaintenanceDate,
		&equipment.RequiresCalibration,
		&equipment.RiskClass,
		&equipment.Status,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrUnknownEquipment, "equipment not found").
				WithDetails(fmt.Sprintf("equipment_id: %s", equipmentID)).
				WithContext(ctx)
		}
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to get equipment").
			WithDetails(fmt.Sprintf("equipment_id: %s", equipmentID)).
			WithContext(ctx)
	}

	return &equipment, nil
}

// UpdateMaintenanceDates записывает даты последнего и следующего обслуживания
func (r *EquipmentRepository) UpdateMaintenanceDates(ctx context.Context, equipmentID string, lastDate, nextDate time.Time) error {
	query := `
		UPDATE equipment
		SET last_maintenance_date = $1,
			next_maintenance_date = $2
		WHERE id = $3
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query, lastDate, nextDate, equipmentID)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to update equipment maintenance dates").
			WithDetails(fmt.Sprintf("equipment_id: %s", equipmentID)).
			WithContext(ctx)
	}

	if result.RowsAffected() == 0 {
		return errors.New(errors.ErrUnknownEquipment, "equipment not found").
			WithDetails(fmt.Sprintf("equipment_id: %s", equipmentID)).
			WithContext(ctx)
	}

	return nil
}

// UpdateStatus записывает эксплуатационный статус оборудования
func (r *EquipmentRepository) UpdateStatus(ctx context.Context, equipmentID string, status domain.EquipmentStatus) error {
	query := `
		UPDATE equipment
		SET status = $1
		WHERE id = $2
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query, status, equipmentID)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to update equipment status").
			WithDetails(fmt.Sprintf("equipment_id: %s, status: %s", equipmentID, status)).
			WithContext(ctx)
	}

	if result.RowsAffected() == 0 {
		return errors.New(errors.ErrUnknownEquipment, "equipment not found").
			WithDetails(fmt.Sprintf("equipment_id: %s", equipmentID)).
			WithContext(ctx)
	}

	return nil
}
