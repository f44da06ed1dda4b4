package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
)

// KeyPrefix namespaces cache entries; the full key is
// docsearch:cache:emb:<model>:<sha256(text)>.
const KeyPrefix = domain.KeyPrefix + "cache:emb:"

// Lookup outcomes, used as the "result" label of the cache counter.
const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultStale = "stale"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedEmbedder serves document and query vectors from the key-value store,
// falling back to the provider on a miss.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	model      string
	dimensions int
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator for one embedding model. A positive
// dimensions value makes entries of any other width count as stale.
// cacheTotal may be nil.
func New(
	inner domain.Embedder,
	s store,
	model string,
	dimensions int,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		model:      model,
		dimensions: dimensions,
		cacheTotal: cacheTotal,
		logger:     logger.With(zap.String("model", model)),
	}
}

// Key returns the cache key of text under model.
func Key(model, text string) string {
	h := sha256.Sum256([]byte(text))
	return KeyPrefix + model + ":" + hex.EncodeToString(h[:])
}

// Embed returns the cached vector with zero token usage, or embeds text and
// stores the result. The store never fails the call.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := Key(c.model, text)

	vec, result := c.lookup(ctx, key)
	c.count(result)
	if result == resultHit {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	c.save(ctx, key, res.Embedding)
	return res, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, string) {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, resultMiss
	case err != nil:
		c.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, resultMiss
	}

	vec, err := decode(data)
	if err == nil {
		err = c.usable(vec)
	}
	if err != nil {
		c.logger.Warn("Discarding cached embedding", zap.String("key", key), zap.Error(err))
		return nil, resultStale
	}
	return vec, resultHit
}

// save skips vectors that lookup would reject.
func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	if err := c.usable(vec); err != nil {
		c.logger.Debug("Not caching embedding", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, encode(vec)); err != nil {
		c.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) usable(vec []float32) error {
	if len(vec) == 0 {
		return errors.New("empty vector")
	}
	if c.dimensions > 0 && len(vec) != c.dimensions {
		return fmt.Errorf("%d dimensions, want %d", len(vec), c.dimensions)
	}
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return errors.New("non-finite component")
		}
	}
	return nil
}

func (c *CachedEmbedder) count(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// encode writes v as little-endian float32, the layout the stores use for
// document vectors.
func encode(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("entry length %d is not a multiple of 4", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return v, nil
}
