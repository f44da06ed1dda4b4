package postgres

import (
	"context"
	"database/sql"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// WriteIndex inserts the postings and upserts the embedding in one transaction.
func (s *Store) WriteIndex(ctx context.Context, postings []db.PostingRow, embedding db.EmbeddingRow) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertPostings(ctx, tx, postings); err != nil {
			return err
		}
		return upsertEmbedding(ctx, tx, embedding)
	})
	if err != nil {
		return &db.Error{Op: db.OpWriteIndex, Err: err}
	}
	return nil
}
