package indexing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	domemb "github.com/kailas-cloud/docsearch/internal/domain/embedding"
	"github.com/kailas-cloud/docsearch/internal/domain/posting"
	"github.com/kailas-cloud/docsearch/internal/domain/text"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// DefaultDFConcurrency bounds parallel document-frequency lookups per document.
const DefaultDFConcurrency = 8

// Sources label where an indexing request came from.
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// Input is one document to index.
type Input struct {
	DocumentID string
	Title      string
	Content    string
	FileType   domdoc.FileType
	// Source is a metrics label; empty means SourceHTTP.
	Source string
}

// Result reports what Index wrote.
type Result struct {
	// TermsIndexed is the number of distinct terms written to the inverted index.
	TermsIndexed int
}

// Service turns document text into postings and an embedding.
type Service struct {
	docs          DocumentRepository
	postings      PostingRepository
	writer        IndexWriter
	embed         Embedder
	dimensions    int
	dfConcurrency int
	now           func() time.Time
	logger        *zap.Logger
}

// New creates an indexing service. dimensions pins the embedding width (0 disables the check);
// dfConcurrency <= 0 falls back to DefaultDFConcurrency.
func New(
	docs DocumentRepository, postings PostingRepository, writer IndexWriter,
	embed Embedder, dimensions, dfConcurrency int, logger *zap.Logger,
) *Service {
	if dfConcurrency <= 0 {
		dfConcurrency = DefaultDFConcurrency
	}
	return &Service{
		docs:          docs,
		postings:      postings,
		writer:        writer,
		embed:         embed,
		dimensions:    dimensions,
		dfConcurrency: dfConcurrency,
		now:           time.Now,
		logger:        logger,
	}
}

// Index validates the document, makes sure its row exists, computes TF-IDF
// postings against the current corpus, embeds the content and stores both
// in one index write. Only the document row may outlive a failed call; a
// retry reuses it.
func (s *Service) Index(ctx context.Context, in Input) (Result, error) {
	start := time.Now()
	source := in.Source
	if source == "" {
		source = SourceHTTP
	}

	res, err := s.index(ctx, in)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.DocumentsIndexedTotal.WithLabelValues(source, status).Inc()
	if err != nil {
		s.logger.Warn("Index document failed",
			zap.String("document_id", in.DocumentID),
			zap.String("source", source),
			zap.Error(err),
		)
		return Result{}, err
	}

	metrics.IndexDuration.Observe(time.Since(start).Seconds())
	metrics.IndexTerms.Observe(float64(res.TermsIndexed))
	s.logger.Debug("Document indexed",
		zap.String("document_id", in.DocumentID),
		zap.String("source", source),
		zap.Int("terms", res.TermsIndexed),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (s *Service) index(ctx context.Context, in Input) (Result, error) {
	doc, err := domdoc.New(in.DocumentID, in.Title, in.Content, in.FileType, s.now().UnixMilli())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	// the corpus size must include this document
	if err = s.docs.Create(ctx, &doc); err != nil && !errors.Is(err, domain.ErrDocumentExists) {
		return Result{}, fmt.Errorf("ensure document: %w", err)
	}

	stats := text.Analyze(text.Tokenize(doc.Content()))

	var (
		vec      []float32
		postings []posting.Posting
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, embErr := s.embed.Embed(gctx, doc.Content())
		if embErr != nil {
			return fmt.Errorf("embed content: %w", embErr)
		}
		domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
		vec = res.Embedding
		return nil
	})
	g.Go(func() error {
		var weighErr error
		postings, weighErr = s.weigh(gctx, doc.ID(), stats)
		return weighErr
	})
	if err = g.Wait(); err != nil {
		return Result{}, err
	}

	if s.dimensions > 0 && len(vec) != s.dimensions {
		return Result{}, fmt.Errorf("%w: embedding has %d dimensions, expected %d",
			domain.ErrVectorDimMismatch, len(vec), s.dimensions)
	}

	if err = s.writer.Write(ctx, postings, domemb.Embedding{DocumentID: doc.ID(), Vector: vec}); err != nil {
		return Result{}, fmt.Errorf("write index: %w", err)
	}

	return Result{TermsIndexed: len(postings)}, nil
}

// weigh builds one posting per term. Document frequencies are read before
// this document's postings are written.
func (s *Service) weigh(ctx context.Context, docID string, stats []text.TermStat) ([]posting.Posting, error) {
	n, err := s.docs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	dfs := make([]int, len(stats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.dfConcurrency)
	for i := range stats {
		g.Go(func() error {
			df, dfErr := s.postings.DocumentFrequency(gctx, stats[i].Term)
			if dfErr != nil {
				return fmt.Errorf("document frequency %q: %w", stats[i].Term, dfErr)
			}
			dfs[i] = df
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	postings := make([]posting.Posting, len(stats))
	for i, st := range stats {
		postings[i] = posting.Posting{
			Term:          st.Term,
			DocumentID:    docID,
			TFIDF:         text.TFIDF(st.Frequency, text.IDF(n, dfs[i])),
			TermFrequency: st.Frequency,
			Positions:     st.Positions,
		}
	}
	return postings, nil
}
