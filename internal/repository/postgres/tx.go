package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"AssetCarePlatform/internal/repository"
	"AssetCarePlatform/pkg/errors"
)

// txKey ключ транзакции в контексте
type txKey struct{}

// querier объединяет pool и транзакцию для выполнения запросов
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// querierFrom возвращает транзакцию из контекста или pool
func querierFrom(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// TxManager реализация repository.TxManager поверх pgx
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager создает новый TxManager
func NewTxManager(pool *pgxpool.Pool) repository.TxManager {
	return &TxManager{pool: pool}
}

// WithinTransaction выполняет fn в одной транзакции.
// При ошибке fn транзакция откатывается целиком, частичных записей не остается.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to begin transaction").
			WithContext(ctx)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			return errors.Wrap(rbErr, errors.ErrInternal, "failed to rollback transaction").
				WithContext(ctx)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to commit transaction").
			WithContext(ctx)
	}

	return nil
}
