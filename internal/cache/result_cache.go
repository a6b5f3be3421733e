package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salesight/backend-go/internal/config"
	"github.com/salesight/backend-go/internal/domain"
)

const (
	resultKeyPrefix  = "analytics:dashboard"
	defaultResultTTL = 5 * time.Minute
)

// ResultCache stores computed dashboard bundles keyed by dataset identity and
// analysis parameters. The analytics core stays stateless; caching is purely
// a service-boundary concern and is safe to disable.
type ResultCache interface {
	Get(ctx context.Context, datasetKey string, params domain.AnalysisParams) (*domain.DashboardResult, bool, error)
	Set(ctx context.Context, datasetKey string, params domain.AnalysisParams, result *domain.DashboardResult) error
}

type redisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopResultCache struct{}

// NewResultCache builds a Redis-backed cache when enabled, a noop otherwise.
func NewResultCache(cfg config.CacheConfig) (ResultCache, error) {
	if !cfg.Enabled {
		return &noopResultCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.ResultTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultResultTTL
	}

	return &redisResultCache{client: client, ttl: ttl}, nil
}

func NewNoopResultCache() ResultCache {
	return &noopResultCache{}
}

func (c *redisResultCache) Get(ctx context.Context, datasetKey string, params domain.AnalysisParams) (*domain.DashboardResult, bool, error) {
	key := buildResultKey(datasetKey, params)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.DashboardResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode dashboard result cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisResultCache) Set(ctx context.Context, datasetKey string, params domain.AnalysisParams, result *domain.DashboardResult) error {
	key := buildResultKey(datasetKey, params)

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode dashboard result cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *noopResultCache) Get(ctx context.Context, datasetKey string, params domain.AnalysisParams) (*domain.DashboardResult, bool, error) {
	return nil, false, nil
}

func (c *noopResultCache) Set(ctx context.Context, datasetKey string, params domain.AnalysisParams, result *domain.DashboardResult) error {
	return nil
}

// buildResultKey hashes the dataset key plus the parameter set, so any change
// in filters or horizon produces a distinct entry.
func buildResultKey(datasetKey string, params domain.AnalysisParams) string {
	raw, _ := json.Marshal(params)
	sum := sha1.Sum(append([]byte(datasetKey+"|"), raw...))
	return fmt.Sprintf("%s:%s", resultKeyPrefix, hex.EncodeToString(sum[:]))
}
