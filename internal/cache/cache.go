// cache — бэкенд cache-aside для GET-ответов: хранилище сериализованных
// тел ответов с TTL, вывод ключа из запроса и ETag.
package cache

import (
	"context"
	"time"
)

// Store — минимальный контракт кэша ответов.
type Store interface {
	// Get возвращает значение и признак его наличия в кэше.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set сохраняет значение с TTL, перезаписывая прежнее.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Close закрывает соединение с бэкендом.
	Close() error
}
