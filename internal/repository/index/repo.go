package index

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domemb "github.com/kailas-cloud/docsearch/internal/domain/embedding"
	domposting "github.com/kailas-cloud/docsearch/internal/domain/posting"
)

// store is the consumer interface for the combined index write (ISP).
type store interface {
	WriteIndex(ctx context.Context, postings []db.PostingRow, embedding db.EmbeddingRow) error
}

// Repo writes a document's postings and vector as one unit.
type Repo struct {
	store      store
	dimensions int
}

// New creates an index repository. A positive dimensions value rejects
// vectors of any other length.
func New(s store, dimensions int) *Repo {
	return &Repo{store: s, dimensions: dimensions}
}

// Write validates everything first, then stores the postings and the
// embedding together. On error nothing from this call is readable.
func (r *Repo) Write(ctx context.Context, postings []domposting.Posting, e domemb.Embedding) error {
	if r.dimensions > 0 && len(e.Vector) != r.dimensions {
		return fmt.Errorf("document %s: got %d, want %d: %w",
			e.DocumentID, len(e.Vector), r.dimensions, domain.ErrVectorDimMismatch)
	}
	if err := e.Validate(r.dimensions); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	rows := make([]db.PostingRow, len(postings))
	for i := range postings {
		p := &postings[i]
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		if p.DocumentID != e.DocumentID {
			return fmt.Errorf("%w: posting %q belongs to %s, not %s",
				domain.ErrInvalidInput, p.Term, p.DocumentID, e.DocumentID)
		}
		rows[i] = db.PostingRow{
			Term:          p.Term,
			DocumentID:    p.DocumentID,
			TFIDF:         p.TFIDF,
			TermFrequency: p.TermFrequency,
			Positions:     p.Positions,
		}
	}

	emb := db.EmbeddingRow{DocumentID: e.DocumentID, Vector: e.Vector}
	if err := r.store.WriteIndex(ctx, rows, emb); err != nil {
		return fmt.Errorf("write index %s (%d postings): %w", e.DocumentID, len(rows), err)
	}
	return nil
}
