// Package cache держит найденные предсказания в Redis, чтобы повторные запросы не ходили в БД.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"news_verifier/internal/config"
	"news_verifier/internal/logger"
	"news_verifier/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix         = "prediction:"
	connectionTimeout = 5 * time.Second
)

// ErrEmptyAddress возвращается, если адрес Redis не задан.
var ErrEmptyAddress = errors.New("redis address is required")

// Lookup - источник предсказаний, обычно *db.Database.
type Lookup interface {
	LookupPrediction(ctx context.Context, url string) (*models.Prediction, error)
}

// Client - команды Redis, которые нужны кэшу. Его реализует *redis.Client.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// PredictionCache кэширует только найденные предсказания: промах не запоминается,
// потому что строка в predictions может появиться позже.
// Ошибки Redis не прерывают запрос: поиск продолжается в next.
type PredictionCache struct {
	next   Lookup
	client Client
	ttl    time.Duration
}

func NewPredictionCache(next Lookup, client Client, ttl time.Duration) *PredictionCache {
	return &PredictionCache{next: next, client: client, ttl: ttl}
}

// NewClient подключается к Redis и проверяет соединение.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (c *PredictionCache) LookupPrediction(ctx context.Context, url string) (*models.Prediction, error) {
	log := logger.FromContext(ctx, logger.Component("cache")).WithField("url", url)
	key := keyPrefix + url

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var p models.Prediction
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return &p, nil
		}
		log.Warn("Discarding malformed cached prediction")
	case errors.Is(err, redis.Nil):
	default:
		log.Warnf("Redis get failed: %v", err)
	}

	p, err := c.next.LookupPrediction(ctx, url)
	if err != nil || p == nil {
		return p, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warnf("Redis set failed: %v", err)
		}
	}
	return p, nil
}
