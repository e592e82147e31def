package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/embedefy-bridge/internal/batch"
	"github.com/samvad-hq/embedefy-bridge/internal/config"
	"github.com/samvad-hq/embedefy-bridge/internal/logger"
	"github.com/samvad-hq/embedefy-bridge/internal/storage"
	"github.com/samvad-hq/embedefy-bridge/pkg/embedefy"
	"github.com/samvad-hq/embedefy-bridge/pkg/publishers"
	"github.com/samvad-hq/embedefy-bridge/pkg/sources"
)

// Batcher embeds every configured source and publishes the results, either
// once or on a fixed interval.
type Batcher struct {
	cfg       *config.Config
	sourceReg *sources.Registry
	fanout    *publishers.Fanout
	service   *batch.Service
	interval  time.Duration
	log       logger.Logger
	store     storage.Store
}

// NewBatcher builds a batch runtime from config files. opts are forwarded to
// the embedefy client.
func NewBatcher(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...embedefy.Option) (*Batcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sourceReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	sourceList := sourceReg.All()
	sourceIDs := make([]string, 0, len(sourceList))
	for _, s := range sourceList {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.DefaultRegistry().BuildAll(ctx, enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := openStore(cfg, log)
	if err != nil {
		return nil, errors.Join(err, fanout.Close())
	}

	client := newEmbedefyClient(cfg, log, opts...)
	service := batch.NewService(
		sources.DefaultReaderRegistry(nil),
		client,
		fanout,
		store,
		log,
		batch.Options{
			Limiter:    batch.NewLimiter(cfg.RequestsPerSecond),
			CacheScope: client.Config().EndpointURL,
		},
	)

	return &Batcher{
		cfg:       cfg,
		sourceReg: sourceReg,
		fanout:    fanout,
		service:   service,
		interval:  cfg.BatchInterval,
		log:       log,
		store:     store,
	}, nil
}

// Run executes a batch pass and, when an interval is configured, repeats it
// until the context is cancelled. Publishers and storage are released on return.
func (b *Batcher) Run(ctx context.Context) error {
	if b == nil || b.service == nil {
		return fmt.Errorf("batcher is not initialized")
	}
	defer b.close()

	srcs := b.sourceReg.All()
	b.log.InfoObj("batcher starting", "batcher_state", map[string]any{
		"sources_count":    len(srcs),
		"publishers_count": b.fanout.Size(),
		"batch_interval":   b.interval.String(),
	})

	err := b.runOnce(ctx, srcs)
	if b.interval <= 0 {
		return err
	}
	if err != nil {
		b.log.ErrorObj("initial batch failed", "error", err.Error())
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.InfoObj("batcher loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := b.runOnce(ctx, srcs); err != nil {
				b.log.ErrorObj("scheduled batch failed", "error", err.Error())
			}
		}
	}
}

// runOnce performs a single pass across all sources.
func (b *Batcher) runOnce(ctx context.Context, srcs []sources.Source) error {
	start := time.Now()
	stats, err := b.service.Run(ctx, srcs)
	b.log.InfoObj("batch completed", "batch_meta", map[string]any{
		"sources_count": len(srcs),
		"inputs":        stats.Inputs,
		"embedded":      stats.Embedded,
		"cached":        stats.Cached,
		"published":     stats.Published,
		"failed":        stats.Failed,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return err
}

// close releases publishers and storage, logging any errors encountered.
func (b *Batcher) close() {
	if err := b.fanout.Close(); err != nil {
		b.log.ErrorObj("publishers close failed", "error", err.Error())
	}
	if b.store != nil {
		if err := b.store.Close(); err != nil {
			b.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
}
