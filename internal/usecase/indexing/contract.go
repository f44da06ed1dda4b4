package indexing

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	domemb "github.com/kailas-cloud/docsearch/internal/domain/embedding"
	"github.com/kailas-cloud/docsearch/internal/domain/posting"
)

// DocumentRepository stores document rows and reports the corpus size.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domdoc.Document) error
	Count(ctx context.Context) (int, error)
}

// PostingRepository reports document frequencies from the inverted index.
type PostingRepository interface {
	DocumentFrequency(ctx context.Context, term string) (int, error)
}

// IndexWriter stores a document's postings and vector as one unit.
type IndexWriter interface {
	Write(ctx context.Context, postings []posting.Posting, e domemb.Embedding) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
