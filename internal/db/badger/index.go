package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// WriteIndex stages the postings and the embedding in one read-write
// transaction; nothing is visible unless the commit succeeds.
func (s *Store) WriteIndex(_ context.Context, postings []db.PostingRow, embedding db.EmbeddingRow) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.putPostings(txn, postings); err != nil {
			return err
		}
		return putEmbedding(txn, embedding)
	})
	if err != nil {
		return &db.Error{Op: db.OpWriteIndex, Err: err}
	}
	return nil
}
