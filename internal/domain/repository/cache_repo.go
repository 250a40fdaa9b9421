package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Get возвращает apperrors.ErrNotFound, если ключа нет.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
