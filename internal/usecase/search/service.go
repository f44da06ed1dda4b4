package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/posting"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/text"
	"github.com/kailas-cloud/docsearch/internal/domain/vector"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// DefaultEmbeddingScanLimit caps how many stored vectors one semantic search scores.
const DefaultEmbeddingScanLimit = 100

// Service handles document search across semantic, keyword, and hybrid modes.
type Service struct {
	docs       DocumentReader
	postings   PostingReader
	embeddings EmbeddingReader
	embed      Embedder
	scanLimit  int
	logger     *zap.Logger
}

// New creates a search service. scanLimit <= 0 falls back to DefaultEmbeddingScanLimit.
func New(
	docs DocumentReader, postings PostingReader, embeddings EmbeddingReader,
	embed Embedder, scanLimit int, logger *zap.Logger,
) *Service {
	if scanLimit <= 0 {
		scanLimit = DefaultEmbeddingScanLimit
	}
	return &Service{
		docs:       docs,
		postings:   postings,
		embeddings: embeddings,
		embed:      embed,
		scanLimit:  scanLimit,
		logger:     logger,
	}
}

// Search runs the branches the mode needs concurrently and returns at most
// request.TopK hits, best first.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Scored, error) {
	m := req.Mode()
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: unsupported search mode %q", domain.ErrInvalidInput, m)
	}

	var keyword, semantic []result.Scored
	g, gctx := errgroup.WithContext(ctx)
	if m.UsesKeyword() {
		g.Go(func() error {
			var err error
			keyword, err = s.searchKeyword(gctx, req.Query())
			return err
		})
	}
	if m.UsesSemantic() {
		g.Go(func() error {
			var err error
			semantic, err = s.searchSemantic(gctx, req.Query())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		return nil, err
	}

	var results []result.Scored
	switch m {
	case mode.Keyword:
		results = keyword
	case mode.Semantic:
		results = semantic
	default:
		results = fuseWeighted(keyword, semantic, request.TopK)
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(m), "ok").Inc()
	metrics.SearchResults.WithLabelValues(string(m)).Observe(float64(len(results)))
	return results, nil
}

// searchKeyword sums stored tf_idf weights of the distinct query terms per document.
func (s *Service) searchKeyword(ctx context.Context, query string) ([]result.Scored, error) {
	terms := text.Distinct(text.Tokenize(query))
	if len(terms) == 0 {
		return nil, nil
	}

	postings, err := s.postings.ForTerms(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("keyword postings: %w", err)
	}

	ranked := rank(posting.SumByDocument(postings), request.TopK)
	hits, err := s.hydrate(ctx, ranked, func(hit *result.Scored, score float64) {
		hit.KeywordScore = score
	})
	if err != nil {
		return nil, fmt.Errorf("keyword documents: %w", err)
	}
	result.Sort(hits, result.ByKeyword)
	return hits, nil
}

// searchSemantic ranks stored vectors by cosine similarity to the query.
// A failed query embedding yields no hits instead of an error.
func (s *Service) searchSemantic(ctx context.Context, query string) ([]result.Scored, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err == nil && len(emb.Embedding) == 0 {
		err = vector.ErrEmptyVector
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("vectorize query: %w", ctx.Err())
		}
		s.logger.Warn("Query embedding failed, semantic results dropped", zap.Error(err))
		metrics.SearchDegradedTotal.Inc()
		domain.UsageFromContext(ctx).MarkDegraded()
		return nil, nil
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	stored, err := s.embeddings.List(ctx, s.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	candidates := make([]vector.Candidate, len(stored))
	for i, e := range stored {
		candidates[i] = vector.Candidate{ID: e.DocumentID, Vector: e.Vector}
	}
	matches, skipped := vector.TopK(emb.Embedding, candidates, request.TopK)
	for _, sk := range skipped {
		reason := skipReason(sk.Err)
		metrics.SearchCandidatesSkippedTotal.WithLabelValues(reason).Inc()
		s.logger.Warn("Embedding skipped during similarity scan",
			zap.String("document_id", sk.ID),
			zap.String("reason", reason),
			zap.Error(sk.Err),
		)
	}

	ranked := make([]scoredID, len(matches))
	for i, m := range matches {
		ranked[i] = scoredID{id: m.ID, score: m.Similarity}
	}
	hits, err := s.hydrate(ctx, ranked, func(hit *result.Scored, score float64) {
		hit.SemanticScore = score
	})
	if err != nil {
		return nil, fmt.Errorf("semantic documents: %w", err)
	}
	result.Sort(hits, result.BySemantic)
	return hits, nil
}

type scoredID struct {
	id    string
	score float64
}

// rank orders document scores descending (id ascending on ties) and keeps the first k.
func rank(scores map[string]float64, k int) []scoredID {
	ranked := make([]scoredID, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, scoredID{id: id, score: score})
	}
	slices.SortFunc(ranked, func(a, b scoredID) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// hydrate loads documents for ranked ids. Ids without a stored document are dropped.
func (s *Service) hydrate(
	ctx context.Context, ranked []scoredID, set func(hit *result.Scored, score float64),
) ([]result.Scored, error) {
	if len(ranked) == 0 {
		return nil, nil
	}
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}

	docs, err := s.docs.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domdoc.Document, len(docs))
	for i := range docs {
		byID[docs[i].ID()] = docs[i]
	}

	hits := make([]result.Scored, 0, len(ranked))
	for _, r := range ranked {
		doc, ok := byID[r.id]
		if !ok {
			s.logger.Warn("Ranked document missing from store", zap.String("document_id", r.id))
			continue
		}
		hit := result.Scored{Document: doc}
		set(&hit, r.score)
		hits = append(hits, hit)
	}
	return hits, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, vector.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, vector.ErrZeroVector):
		return "zero_vector"
	case errors.Is(err, vector.ErrEmptyVector):
		return "empty_vector"
	default:
		return "other"
	}
}
