package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/embedefy-bridge/internal/batch"
	"github.com/samvad-hq/embedefy-bridge/internal/config"
	"github.com/samvad-hq/embedefy-bridge/internal/logger"
	"github.com/samvad-hq/embedefy-bridge/internal/storage"
	"github.com/samvad-hq/embedefy-bridge/pkg/embedefy"
)

// Bridge answers single embedding requests, consulting the configured cache
// before calling the API.
type Bridge struct {
	client *embedefy.Client
	store  storage.Store
	log    logger.Logger
}

// NewBridge builds a bridge from config. opts are forwarded to the embedefy client.
func NewBridge(cfg *config.Config, log logger.Logger, opts ...embedefy.Option) (*Bridge, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Bridge{
		client: newEmbedefyClient(cfg, log, opts...),
		store:  store,
		log:    log,
	}, nil
}

// Embed returns the JSON-encoded embedding data for input under model.
func (b *Bridge) Embed(ctx context.Context, model, input string) (string, error) {
	if b == nil || b.client == nil {
		return "", fmt.Errorf("bridge is not initialized")
	}

	key := batch.CacheKey(b.client.Config().EndpointURL, model, input)
	if data, ok, err := b.store.Get(key); err != nil {
		b.log.WarnObj("cache lookup failed", "cache_error", err.Error())
	} else if ok {
		b.log.DebugObj("embedding served from cache", "cache_hit", map[string]any{"model": model})
		return data, nil
	}

	data, err := b.client.EmbeddingRequest(ctx, model, input)
	if err != nil {
		return "", err
	}
	if err := b.store.Put(key, data); err != nil {
		b.log.WarnObj("cache write failed", "cache_error", err.Error())
	}
	return data, nil
}

// Close releases the cache backend.
func (b *Bridge) Close() error {
	if b == nil || b.store == nil {
		return nil
	}
	return b.store.Close()
}

func newEmbedefyClient(cfg *config.Config, log logger.Logger, opts ...embedefy.Option) *embedefy.Client {
	all := append([]embedefy.Option{embedefy.WithLogger(log)}, opts...)
	return embedefy.NewClient(embedefy.Config{
		EndpointURL: cfg.EmbeddingsEndpoint,
		AccessToken: cfg.AccessToken,
		Timeout:     cfg.RequestTimeout,
	}, all...)
}

func openStore(cfg *config.Config, log logger.Logger) (storage.Store, error) {
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
		MaxEntries:      cfg.MemoryCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})
	return store, nil
}
