// Package ratelimit wraps an embedding service with a token-bucket rate
// limit. The embedding capability is external and rate-limited; the wrapper
// keeps ingestion within the provider's budget regardless of how many
// chunks a pass needs to embed.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/semsync/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Service is a rate-limited embedding service.
type Service struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap limits inner to perSecond embedding calls with the given burst.
// A batch of n texts consumes min(n, burst) tokens.
func Wrap(inner driven.EmbeddingService, perSecond float64, burst int) *Service {
	if burst < 1 {
		burst = 1
	}
	return &Service{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Embed waits for one token, then delegates.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch waits for one token per text, capped at the limiter's burst
// so oversized batches can still pass, then delegates.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	n := len(texts)
	if n > s.limiter.Burst() {
		n = s.limiter.Burst()
	}
	if err := s.limiter.WaitN(ctx, n); err != nil {
		return nil, err
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the embedding vector size.
func (s *Service) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the name of the embedding model being used.
func (s *Service) ModelName() string { return s.inner.ModelName() }

// Ping validates the service is reachable.
func (s *Service) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close releases resources.
func (s *Service) Close() error { return s.inner.Close() }
