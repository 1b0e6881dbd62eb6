package gatepass

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solarspot/gatepass/ledger"
	"github.com/solarspot/gatepass/manifest"
	"github.com/solarspot/gatepass/storage"
	"github.com/solarspot/gatepass/token"
)

// Builder defines a public type used by gatepass APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store     storage.Store
	redis     *redis.Client
	dataDir   string
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecret describes the withsecret operation and its observable behavior.
//
// WithSecret does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.Token.Secret = cloneBytes(secret)
	return b
}

// WithStorage sets an explicit storage backend. It takes precedence over
// WithRedis and WithDataDir.
func (b *Builder) WithStorage(store storage.Store) *Builder {
	b.store = store
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithDataDir selects the file storage backend rooted at dir.
func (b *Builder) WithDataDir(dir string) *Builder {
	b.dataDir = dir
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithAckTimeout describes the withacktimeout operation and its observable behavior.
//
// WithAckTimeout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAckTimeout(d time.Duration) *Builder {
	b.config.Scan.AckTimeout = d
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build(ctx context.Context) (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- STORAGE --------
	store := b.store
	switch {
	case store != nil:
	case b.redis != nil:
		store = storage.NewRedisStore(b.redis, cfg.Storage.RedisPrefix+":"+cfg.Terminal.ID)
	case b.dataDir != "":
		fs, err := storage.NewFileStore(b.dataDir)
		if err != nil {
			return nil, err
		}
		store = fs
	default:
		return nil, ErrStorageRequired
	}

	// -------- CODEC --------
	codec, err := token.NewCodec(token.Config{Secret: cfg.Token.Secret})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		codec:    codec,
		manifest: manifest.NewStore(),
		ledger:   ledger.New(),
		store:    store,
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.now = time.Now

	if err := engine.restore(ctx); err != nil {
		engine.Close()
		return nil, fmt.Errorf("restore snapshots: %w", err)
	}

	b.built = true

	return engine, nil
}
