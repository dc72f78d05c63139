package schema

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/metrics"
	"github.com/xzzpig/content-rest/internal/core/ports"
)

// IntrospectionQuery requests a type's fields with three levels of ofType.
const IntrospectionQuery = `query IntrospectType($name: String!) {
  __type(name: $name) {
    name
    kind
    fields {
      name
      type {
        name
        kind
        ofType {
          name
          kind
          ofType {
            name
            kind
          }
        }
      }
    }
  }
}`

// DefaultIntrospectionTTL is how long a fetched shape stays fresh.
const DefaultIntrospectionTTL = 24 * time.Hour

// ShapeSource resolves a type name to its shape.
type ShapeSource interface {
	GetTypeShape(ctx context.Context, typeName string) (*TypeShape, bool)
}

// Introspector caches type shapes fetched from the upstream schema.
// Concurrent misses for the same name may both fetch; the last write wins.
type Introspector struct {
	exec    ports.Executor
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.CacheMetrics

	mu      sync.RWMutex
	entries map[string]*TypeShape
}

var _ ShapeSource = (*Introspector)(nil)

// IntrospectorOption configures an Introspector.
type IntrospectorOption func(*Introspector)

// WithTTL overrides DefaultIntrospectionTTL.
func WithTTL(ttl time.Duration) IntrospectorOption {
	return func(i *Introspector) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithClock sets the time source used for freshness checks.
func WithClock(now func() time.Time) IntrospectorOption {
	return func(i *Introspector) { i.now = now }
}

// WithMetrics records hits, misses and failures.
func WithMetrics(m *metrics.CacheMetrics) IntrospectorOption {
	return func(i *Introspector) { i.metrics = m }
}

// NewIntrospector creates an empty introspection cache backed by exec.
func NewIntrospector(exec ports.Executor, opts ...IntrospectorOption) *Introspector {
	i := &Introspector{
		exec:    exec,
		ttl:     DefaultIntrospectionTTL,
		now:     time.Now,
		entries: make(map[string]*TypeShape),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func introspectLog() *zap.Logger {
	return logger.Named("core.schema.introspect")
}

// GetTypeShape returns the shape of typeName, fetching it when absent or
// older than the TTL. It returns false when the type cannot be introspected;
// nothing is cached in that case.
func (i *Introspector) GetTypeShape(ctx context.Context, typeName string) (*TypeShape, bool) {
	i.mu.RLock()
	cached, ok := i.entries[typeName]
	i.mu.RUnlock()
	if ok && i.now().Sub(cached.FetchedAt) < i.ttl {
		i.metrics.Hit()
		introspectLog().Debug("Using cached introspection", zap.String("type", typeName))
		return cached, true
	}
	i.metrics.Miss()

	shape, err := i.fetch(ctx, typeName)
	if err != nil {
		i.metrics.Failure()
		introspectLog().Warn("Failed to introspect type", zap.String("type", typeName), zap.Error(err))
		return nil, false
	}
	if shape == nil {
		i.metrics.Failure()
		introspectLog().Warn("Type not found in schema", zap.String("type", typeName))
		return nil, false
	}

	i.mu.Lock()
	i.entries[typeName] = shape
	size := len(i.entries)
	i.mu.Unlock()
	i.metrics.Set(size)

	introspectLog().Info("Introspected type",
		zap.String("type", typeName),
		zap.Int("scalars", len(shape.Scalars)),
		zap.Int("objects", len(shape.Objects)),
		zap.Int("polymorphic", len(shape.Polymorphic)),
		zap.Int("lists", len(shape.Lists)))
	return shape, true
}

// fetch returns (nil, nil) when the schema has no such type.
func (i *Introspector) fetch(ctx context.Context, typeName string) (*TypeShape, error) {
	res, err := i.exec.Execute(ctx, IntrospectionQuery, map[string]any{"name": typeName},
		ports.AuthContext{Mode: ports.ModePublic})
	if err != nil {
		return nil, err
	}
	raw := gjson.GetBytes(res.Data, "__type")
	if !raw.IsObject() {
		if len(res.Errors) > 0 {
			introspectLog().Debug("Introspection returned errors", zap.String("first", res.Errors[0].Message))
		}
		return nil, nil
	}

	var t introspectedType
	if err := json.Unmarshal([]byte(raw.Raw), &t); err != nil {
		return nil, err
	}
	return categorize(&t, i.now()), nil
}

var _ ports.SchemaStore = (*Introspector)(nil)

// Clear drops every cached shape.
func (i *Introspector) Clear() {
	i.mu.Lock()
	i.entries = make(map[string]*TypeShape)
	i.mu.Unlock()
	i.metrics.Resize(0)
	introspectLog().Info("Introspection cache cleared")
}

// Len returns the number of cached shapes, fresh or stale.
func (i *Introspector) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}
