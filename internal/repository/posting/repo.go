package posting

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domposting "github.com/kailas-cloud/docsearch/internal/domain/posting"
)

// store is the consumer interface for the inverted index (ISP).
type store interface {
	CountPostings(ctx context.Context, term string) (int, error)
	PostingsForTerms(ctx context.Context, terms []string) ([]db.PostingRow, error)
}

// Repo reads the inverted index. Postings are written through the index repository.
type Repo struct {
	store store
}

// New creates a posting repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// DocumentFrequency returns the number of existing postings for term.
func (r *Repo) DocumentFrequency(ctx context.Context, term string) (int, error) {
	n, err := r.store.CountPostings(ctx, term)
	if err != nil {
		return 0, fmt.Errorf("count postings %q: %w", term, err)
	}
	return n, nil
}

// ForTerms returns every posting whose term is in terms.
func (r *Repo) ForTerms(ctx context.Context, terms []string) ([]domposting.Posting, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	rows, err := r.store.PostingsForTerms(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("postings for %d terms: %w", len(terms), err)
	}

	out := make([]domposting.Posting, len(rows))
	for i, row := range rows {
		out[i] = domposting.Posting{
			Term:          row.Term,
			DocumentID:    row.DocumentID,
			TFIDF:         row.TFIDF,
			TermFrequency: row.TermFrequency,
			Positions:     row.Positions,
		}
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
		}
	}
	return out, nil
}
