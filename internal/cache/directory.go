// Package cache keeps the counselor directory in Redis so browsing screens do
// not refetch it from the backend on every visit.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/booking"
	"github.com/wolfman30/mindcare/pkg/logging"
)

const (
	defaultTTL   = 5 * time.Minute
	keyPrefix    = "mindcare:directory:"
	counselorKey = keyPrefix + "counselors"
)

// Directory wraps a booking.Backend and serves ListCounselors from Redis.
// Availability and writes always go to the backend, as do directory reads on
// a context marked by booking.Fresh; those refill the cache. A Redis failure
// falls through to the backend rather than failing the call.
type Directory struct {
	booking.Backend

	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
	tracer trace.Tracer
}

var _ booking.Backend = (*Directory)(nil)

// NewDirectory panics when backend or client is nil. ttl <= 0 uses the default.
func NewDirectory(backend booking.Backend, client *redis.Client, ttl time.Duration, logger *logging.Logger) *Directory {
	if backend == nil {
		panic("cache: backend required")
	}
	if client == nil {
		panic("cache: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Directory{
		Backend: backend,
		redis:   client,
		ttl:     ttl,
		logger:  logger,
		tracer:  otel.Tracer("mindcare.internal.cache"),
	}
}

// ListCounselors returns the cached directory or loads and stores it.
func (d *Directory) ListCounselors(ctx context.Context) ([]api.Counselor, error) {
	ctx, span := d.tracer.Start(ctx, "cache.list_counselors")
	defer span.End()

	if booking.IsFresh(ctx) {
		span.SetAttributes(attribute.Bool("mindcare.cache_bypass", true))
	} else {
		var cached []api.Counselor
		if hit := d.load(ctx, span, counselorKey, &cached); hit {
			return cached, nil
		}
	}

	counselors, err := d.Backend.ListCounselors(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	d.store(ctx, span, counselorKey, counselors)
	return counselors, nil
}

// Invalidate drops the cached directory for every client sharing the Redis.
func (d *Directory) Invalidate(ctx context.Context) error {
	if err := d.redis.Del(ctx, counselorKey).Err(); err != nil {
		return fmt.Errorf("cache: failed to invalidate directory: %w", err)
	}
	return nil
}

func (d *Directory) load(ctx context.Context, span trace.Span, key string, out any) bool {
	data, err := d.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			span.RecordError(err)
			d.logger.Warn("directory cache read failed", "key", key, "error", err)
		}
		span.SetAttributes(attribute.Bool("mindcare.cache_hit", false))
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		d.logger.Warn("directory cache entry corrupt", "key", key, "error", err)
		span.SetAttributes(attribute.Bool("mindcare.cache_hit", false))
		return false
	}
	span.SetAttributes(attribute.Bool("mindcare.cache_hit", true))
	return true
}

func (d *Directory) store(ctx context.Context, span trace.Span, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		span.RecordError(err)
		return
	}
	if err := d.redis.Set(ctx, key, data, d.ttl).Err(); err != nil {
		span.RecordError(err)
		d.logger.Warn("directory cache write failed", "key", key, "error", err)
	}
}

