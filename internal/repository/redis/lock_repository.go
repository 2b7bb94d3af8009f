package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"AssetCarePlatform/internal/repository"
	"AssetCarePlatform/pkg/errors"
)

// LockRepository реализация LockRepository с использованием Redis
type LockRepository struct {
	client *redis.Client
}

// NewLockRepository создает новый экземпляр LockRepository
func NewLockRepository(client *redis.Client) repository.LockRepository {
	return &LockRepository{
		client: client,
	}
}

// lockKey формирует ключ блокировки ресурса
func lockKey(resourceID string) string {
	return fmt.Sprintf("lock:resource:%s", resourceID)
}

// TryLock пытается захватить блокировку ресурса.
// Занятая блокировка возвращает ErrConflict.
func (r *LockRepository) TryLock(ctx context.Context, resourceID, ownerID string, ttl time.Duration) (*repository.LockInfo, error) {
	key := lockKey(resourceID)

	now := time.Now()
	lockInfo := &repository.LockInfo{
		ResourceID: resourceID,
		OwnerID:    ownerID,
		LockedAt:   now,
		ExpiresAt:  now.Add(ttl),
	}

	lockData, err := json.Marshal(lockInfo)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to marshal lock info").
			WithContext(ctx)
	}

	// SET с NX захватывает ключ только если он свободен, EX задает время жизни
	acquired, err := r.client.SetNX(ctx, key, lockData, ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to acquire lock").
			WithDetails(fmt.Sprintf("resource_id: %s, owner_id: %s", resourceID, ownerID)).
			WithContext(ctx)
	}

	if !acquired {
		return nil, errors.New(errors.ErrConflict, "lock already acquired").
			WithDetails(fmt.Sprintf("resource_id: %s", resourceID)).
			WithContext(ctx)
	}

	return lockInfo, nil
}

// ReleaseLock освобождает блокировку, принадлежащую владельцу
func (r *LockRepository) ReleaseLock(ctx context.Context, resourceID, ownerID string) error {
	key := lockKey(resourceID)

	lockData, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			// Блокировка уже истекла
			return nil
		}
		return errors.Wrap(err, errors.ErrInternal, "failed to get lock").
			WithDetails(fmt.Sprintf("resource_id: %s", resourceID)).
			WithContext(ctx)
	}

	var lockInfo repository.LockInfo
	if err := json.Unmarshal([]byte(lockData), &lockInfo); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to unmarshal lock info").
			WithContext(ctx)
	}

	// Чужую блокировку освобождать нельзя
	if lockInfo.OwnerID != ownerID {
		return errors.New(errors.ErrConflict, "lock belongs to different owner").
			WithDetails(fmt.Sprintf("resource_id: %s, expected_owner: %s, actual_owner: %s",
				resourceID, ownerID, lockInfo.OwnerID)).
			WithContext(ctx)
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to release lock").
			WithDetails(fmt.Sprintf("resource_id: %s", resourceID)).
			WithContext(ctx)
	}

	return nil
}
