package batch

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/samvad-hq/embedefy-bridge/internal/logger"
	"github.com/samvad-hq/embedefy-bridge/internal/storage"
	"github.com/samvad-hq/embedefy-bridge/pkg/publishers"
	"github.com/samvad-hq/embedefy-bridge/pkg/sources"
)

// Embedder produces the embedding payload for one input.
type Embedder interface {
	EmbeddingRequest(ctx context.Context, model, input string) (string, error)
}

// EventPublisher delivers embedding events and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Options tunes a Service. The zero value embeds without throttling.
type Options struct {
	// Limiter throttles embedding calls. Nil disables throttling.
	Limiter *rate.Limiter
	// CacheScope is mixed into every cache key, normally the embeddings endpoint.
	CacheScope string
}

// Stats summarizes one Run.
type Stats struct {
	Inputs    int
	Embedded  int
	Cached    int
	Published int
	Failed    int
}

// Service embeds the inputs of every configured source and publishes the results.
type Service struct {
	readers   sources.ReaderRegistry
	embedder  Embedder
	publisher EventPublisher
	store     storage.Store
	limiter   *rate.Limiter
	scope     string
	log       logger.Logger
}

// NewService wires a batch service. A nil store disables caching.
func NewService(readers sources.ReaderRegistry, embedder Embedder, publisher EventPublisher, store storage.Store, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	if store == nil {
		store, _ = storage.NewStore(storage.TypeNone, "", storage.Options{})
	}
	return &Service{
		readers:   readers,
		embedder:  embedder,
		publisher: publisher,
		store:     store,
		limiter:   opts.Limiter,
		scope:     opts.CacheScope,
		log:       log,
	}
}

// NewLimiter returns a limiter allowing rps embedding calls per second, or nil
// when rps is not positive.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), int(math.Max(1, math.Ceil(rps))))
}

// CacheKey derives the cache key for an embedding of input with model.
func CacheKey(scope, model, input string) string {
	return storage.Key(scope, model, input)
}

// Run executes one batch pass over srcs. Failures are collected per source and
// per input and returned joined; successful inputs are not affected by them.
func (s *Service) Run(ctx context.Context, srcs []sources.Source) (Stats, error) {
	if s == nil || s.readers == nil || s.embedder == nil {
		return Stats{}, fmt.Errorf("batch service is not initialized")
	}
	if len(srcs) == 0 {
		return Stats{}, fmt.Errorf("no sources configured for batch")
	}

	var (
		stats Stats
		errs  []error
	)
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.runSource(ctx, src, &stats); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("source batch failed", "source_error", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
		}
	}
	return stats, errors.Join(errs...)
}

func (s *Service) runSource(ctx context.Context, src sources.Source, stats *Stats) error {
	reader, err := s.readers.ReaderFor(src)
	if err != nil {
		return fmt.Errorf("resolve reader for source %s: %w", src.ID, err)
	}

	inputs, err := reader.Read(ctx, src)
	if err != nil {
		return fmt.Errorf("read source %s: %w", src.ID, err)
	}
	stats.Inputs += len(inputs)

	var errs []error
	embedded := 0
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		done, err := s.embedInput(ctx, src, in, stats)
		if err != nil {
			stats.Failed++
			errs = append(errs, fmt.Errorf("source %s input %s: %w", src.ID, in.ID, err))
			continue
		}
		if done {
			embedded++
		}
	}

	s.log.InfoObj("source batch completed", "source_result", map[string]any{
		"source_id": src.ID,
		"model":     src.Model,
		"inputs":    len(inputs),
		"embedded":  embedded,
		"failed":    len(errs),
	})
	return errors.Join(errs...)
}

// embedInput reports whether a fresh embedding was produced for in.
func (s *Service) embedInput(ctx context.Context, src sources.Source, in sources.Input, stats *Stats) (bool, error) {
	key := CacheKey(s.scope, src.Model, in.Text)
	if _, ok, err := s.store.Get(key); err != nil {
		s.log.WarnObj("cache lookup failed", "cache_error", map[string]any{
			"source_id": src.ID,
			"input_id":  in.ID,
			"error":     err.Error(),
		})
	} else if ok {
		stats.Cached++
		return false, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("rate limiter: %w", err)
		}
	}

	data, err := s.embedder.EmbeddingRequest(ctx, src.Model, in.Text)
	if err != nil {
		return false, err
	}
	stats.Embedded++

	if s.publisher != nil {
		n, err := s.publisher.Publish(ctx, publishers.NewEvent(src.ID, src.Model, in.ID, in.Text, data))
		stats.Published += n
		if err != nil {
			return true, fmt.Errorf("publish: %w", err)
		}
	}

	if err := s.store.Put(key, data); err != nil {
		s.log.WarnObj("cache write failed", "cache_error", map[string]any{
			"source_id": src.ID,
			"input_id":  in.ID,
			"error":     err.Error(),
		})
	}
	return true, nil
}
