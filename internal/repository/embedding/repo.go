package embedding

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domemb "github.com/kailas-cloud/docsearch/internal/domain/embedding"
)

// store is the consumer interface for document vectors (ISP).
type store interface {
	ListEmbeddings(ctx context.Context, limit int) ([]db.EmbeddingRow, error)
}

// Repo reads stored document vectors.
type Repo struct {
	store store
}

// New creates an embedding repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// List returns up to limit stored vectors.
func (r *Repo) List(ctx context.Context, limit int) ([]domemb.Embedding, error) {
	rows, err := r.store.ListEmbeddings(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	out := make([]domemb.Embedding, len(rows))
	for i, row := range rows {
		out[i] = domemb.Embedding{DocumentID: row.DocumentID, Vector: row.Vector}
		// dimension drift is left to the similarity scan
		if err := out[i].Validate(0); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
		}
	}
	return out, nil
}
