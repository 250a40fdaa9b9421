package memory

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	apperrors "github.com/yourusername/quiz-app/internal/pkg/errors"
)

// cleanupInterval - период удаления просроченных записей
const cleanupInterval = 5 * time.Minute

// CacheRepo - in-memory реализация repository.CacheRepository, используется когда Redis отключен.
// Данные теряются при рестарте.
type CacheRepo struct {
	cache *gocache.Cache
}

// NewCacheRepo создает пустой кеш
func NewCacheRepo() *CacheRepo {
	return &CacheRepo{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Set сохраняет значение; expiration <= 0 - без срока
func (r *CacheRepo) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	r.cache.Set(key, toString(value), expiration)
	return nil
}

// Get получает значение или apperrors.ErrNotFound
func (r *CacheRepo) Get(_ context.Context, key string) (string, error) {
	val, ok := r.cache.Get(key)
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return val.(string), nil
}

// Delete удаляет значение
func (r *CacheRepo) Delete(_ context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(v)
	}
}
