package search

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	domemb "github.com/kailas-cloud/docsearch/internal/domain/embedding"
	"github.com/kailas-cloud/docsearch/internal/domain/posting"
)

// DocumentReader hydrates ranked ids into documents. Missing ids are omitted.
type DocumentReader interface {
	GetMany(ctx context.Context, ids []string) ([]domdoc.Document, error)
}

// PostingReader reads the inverted index.
type PostingReader interface {
	ForTerms(ctx context.Context, terms []string) ([]posting.Posting, error)
}

// EmbeddingReader lists stored document vectors.
type EmbeddingReader interface {
	List(ctx context.Context, limit int) ([]domemb.Embedding, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
