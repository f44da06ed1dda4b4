package indexing

import (
	"context"
	"sync"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	domemb "github.com/kailas-cloud/docsearch/internal/domain/embedding"
	"github.com/kailas-cloud/docsearch/internal/domain/posting"
)

type mockDocs struct {
	createFn func(ctx context.Context, doc *domdoc.Document) error
	countFn  func(ctx context.Context) (int, error)
	created  []string
}

func (m *mockDocs) Create(ctx context.Context, doc *domdoc.Document) error {
	m.created = append(m.created, doc.ID())
	if m.createFn != nil {
		return m.createFn(ctx, doc)
	}
	return nil
}

func (m *mockDocs) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 1, nil
}

type mockPostings struct {
	dfFn func(ctx context.Context, term string) (int, error)
}

func (m *mockPostings) DocumentFrequency(ctx context.Context, term string) (int, error) {
	if m.dfFn != nil {
		return m.dfFn(ctx, term)
	}
	return 0, nil
}

// mockIndex records every write, including failed ones.
type mockIndex struct {
	mu         sync.Mutex
	writeFn    func(ctx context.Context, postings []posting.Posting, e domemb.Embedding) error
	postings   [][]posting.Posting
	embeddings []domemb.Embedding
}

func (m *mockIndex) Write(ctx context.Context, postings []posting.Posting, e domemb.Embedding) error {
	m.mu.Lock()
	m.postings = append(m.postings, postings)
	m.embeddings = append(m.embeddings, e)
	m.mu.Unlock()
	if m.writeFn != nil {
		return m.writeFn(ctx, postings, e)
	}
	return nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}, TotalTokens: 4}, nil
}
