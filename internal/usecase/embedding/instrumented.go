package embedding

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// InstrumentedEmbedder wraps Embedder with logging and in-flight deduplication.
// Concurrent calls for the same text share one upstream request; only the
// first caller to receive it reports its token counts, the rest report zero.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	group    singleflight.Group
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder. Callers waiting on a shared request
// still honor their own context.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()

	ch := p.group.DoChan(text, func() (any, error) {
		res, err := p.inner.Embed(context.WithoutCancel(ctx), text)
		if err != nil {
			return nil, err
		}
		return &flight{result: res}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", ctx.Err())
	case res = <-ch:
	}

	duration := time.Since(start)

	if res.Err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(res.Err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", res.Err)
	}

	f, _ := res.Val.(*flight)
	if f == nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", domain.ErrEmbeddingProviderError)
	}
	result := f.result
	if !f.claimed.CompareAndSwap(false, true) {
		result.PromptTokens, result.TotalTokens = 0, 0
		metrics.EmbeddingSharedTotal.WithLabelValues(p.provider, p.model).Inc()
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Bool("shared", res.Shared),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// flight is one upstream result shared by every caller of the same text.
type flight struct {
	result  domain.EmbeddingResult
	claimed atomic.Bool
}
