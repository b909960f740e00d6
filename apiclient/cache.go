package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/apiclient/logger"
	"github.com/kbukum/apiclient/observability"
)

// Store is a string key/value store with expiring writes.
// Get returns "" and a nil error for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, ttl time.Duration, value string) error
}

var errNoStore = errors.New("no cache store configured")

// Cache returns the value stored under id, or calls producer, stores its
// JSON form under id for ttl and returns the producer's value as is.
//
// A hit is decoded from JSON, so it comes back as map[string]any, []any,
// string, float64, bool or nil rather than the type the producer returned.
// Concurrent misses for the same id each run the producer.
func (c *Client) Cache(ctx context.Context, id string, ttl time.Duration, producer func(context.Context) (any, error)) (any, error) {
	return CacheAs(ctx, c, id, ttl, producer)
}

// CacheAs is the typed form of Client.Cache: hits are unmarshalled into T.
func CacheAs[T any](ctx context.Context, c *Client, id string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	var zero T
	if c.cache == nil {
		return zero, c.countError(ctx, &Error{Code: ErrCodeCache, Message: errNoStore.Error(), Err: errNoStore})
	}

	ctx, span := c.tracer.Start(ctx, observability.SpanCache)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrCacheID, id))

	cached, err := c.cache.Get(ctx, id)
	if err != nil {
		return zero, c.fail(ctx, span, newError(ErrCodeCache, fmt.Errorf("get %q: %w", id, err)))
	}

	hit := strings.TrimSpace(cached) != ""
	span.SetAttributes(attribute.Bool(observability.AttrCacheHit, hit))
	c.metrics.RecordCacheLookup(ctx, hit)
	c.logDebug(id, hit)

	if hit {
		var v T
		if err := json.Unmarshal([]byte(cached), &v); err != nil {
			return zero, c.fail(ctx, span, newError(ErrCodeDecode, fmt.Errorf("cached %q: %w", id, err)))
		}
		return v, nil
	}

	v, err := producer(ctx)
	if err != nil {
		observability.SetSpanError(span, err)
		return zero, err
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return zero, c.fail(ctx, span, newError(ErrCodeCache, fmt.Errorf("encode %q: %w", id, err)))
	}
	if err := c.cache.SetEx(ctx, id, ttl, string(encoded)); err != nil {
		return zero, c.fail(ctx, span, newError(ErrCodeCache, fmt.Errorf("set %q: %w", id, err)))
	}
	return v, nil
}

// debugLogger is implemented by loggers that also take debug lines.
type debugLogger interface {
	Debug(msg string, fields ...map[string]interface{})
}

func (c *Client) logDebug(id string, hit bool) {
	dl, ok := c.log.(debugLogger)
	if !ok {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	dl.Debug("cache "+result+" "+id, logger.Fields(
		logger.FieldCacheID, id,
		logger.FieldCacheHit, hit,
	))
}
