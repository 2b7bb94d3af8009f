package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"AssetCarePlatform/internal/domain"
	"AssetCarePlatform/pkg/errors"
)

// AuditRepository реализация журнала аудита в PostgreSQL.
// Журнал заполняется внешней подсистемой безопасности, движок читает
// события за окно наблюдения для агрегации риска.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository создает новый экземпляр AuditRepository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{
		pool: pool,
	}
}

// Query возвращает события аудита не старше указанного окна
func (r *AuditRepository) Query(ctx context.Context, window time.Duration) ([]domain.AuditEvent, error) {
	query := `
		SELECT event_timestamp, actor_id, action, risk_level, ip_address
		FROM audit_events
		WHERE event_timestamp >= NOW() - $1::interval
		ORDER BY event_timestamp DESC
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, window)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to query audit events").
			WithDetails(fmt.Sprintf("window: %s", window)).
			WithContext(ctx)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var event domain.AuditEvent
		if err := rows.Scan(
			&event.Timestamp,
			&event.ActorID,
			&event.Action,
			&event.RiskLevel,
			&event.IPAddress,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to scan audit event").
				WithContext(ctx)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to iterate audit events").
			WithContext(ctx)
	}

	return events, nil
}
