package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage хранит значения сессии в Redis под общим префиксом
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage создает хранилище поверх подключенного клиента
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "admin-panel:session:"
	}
	return &RedisStorage{client: client, prefix: prefix}
}

// Get возвращает значение по ключу
func (rs *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := rs.client.Get(ctx, rs.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}
	return value, true, nil
}

// Set сохраняет значение без TTL; срок жизни сессии определяет сервер
func (rs *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := rs.client.Set(ctx, rs.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения в Redis: %w", err)
	}
	return nil
}

// Delete удаляет ключи
func (rs *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, rs.prefix+key)
	}
	if err := rs.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}
	return nil
}
