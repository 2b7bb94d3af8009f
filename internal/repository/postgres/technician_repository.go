package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/pkg/errors"
)

// TechnicianRepository реализация справочника исполнителей в PostgreSQL.
// Таблица исполнителей принадлежит внешнему кадровому сервису, движок
// только читает доступность по роли.
type TechnicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository создает новый экземпляр TechnicianRepository
func NewTechnicianRepository(pool *pgxpool.Pool) *TechnicianRepository {
	return &TechnicianRepository{
		pool: pool,
	}
}

// AvailableByRole возвращает исполнителей указанной роли
func (r *TechnicianRepository) AvailableByRole(ctx context.Context, role string) ([]*domain.Technician, error) {
	query := `
		SELECT id, name, role, available
		FROM technicians
		WHERE role = $1
		ORDER BY name
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, role)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to list technicians").
			WithDetails(fmt.Sprintf("role: %s", role)).
			WithContext(ctx)
	}
	defer rows.Close()

	var technicians []*domain.Technician
	for rows.Next() {
		var technician domain.Technician
		if err := rows.Scan(
			&technician.ID,
			&technician.Name,
			&technician.Role,
			&technician.Available,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to scan technician").
				WithContext(ctx)
		}
		technicians = append(technicians, &technician)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to iterate technicians").
			WithContext(ctx)
	}

	return technicians, nil
}
