package document

import (
	"context"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/usecase/indexing"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Create(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Count(ctx context.Context) (int, error)
}

// Indexer writes postings and the embedding for a stored document.
type Indexer interface {
	Index(ctx context.Context, in indexing.Input) (indexing.Result, error)
}
