package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/usecase"
)

var _ usecase.ReportCache = (*RedisReportCache)(nil)

// RedisReportCache guarda el resumen de reportes serializado en JSON.
type RedisReportCache struct {
	client redis.UniversalClient
}

func NewRedisReportCache(addr string, password string, db int) *RedisReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisReportCache{client: client}
}

// NewRedisReportCacheWithClient permite inyectar un cliente ya construido.
func NewRedisReportCacheWithClient(client redis.UniversalClient) *RedisReportCache {
	return &RedisReportCache{client: client}
}

func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*dto.SummaryResponse, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resp dto.SummaryResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, value *dto.SummaryResponse, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisReportCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
