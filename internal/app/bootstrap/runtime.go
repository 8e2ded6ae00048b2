// Package bootstrap builds the shared runtime pieces the commands wire
// together: the Redis client, the API backend and the fake backend.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/booking"
	"github.com/wolfman30/mindcare/internal/cache"
	appconfig "github.com/wolfman30/mindcare/internal/config"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, directory cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildBackend returns the booking backend for the shell: the API client
// itself, or the Redis-cached directory in front of it when redis is set.
func BuildBackend(client *api.Client, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) (booking.Backend, error) {
	if client == nil {
		return nil, fmt.Errorf("bootstrap: api client is required")
	}
	if redisClient == nil {
		return client, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.DirectoryCacheTTL
	}
	logger.Info("counselor directory cache enabled", "ttl", ttl.String())
	return cache.NewDirectory(client, redisClient, ttl, logger), nil
}
