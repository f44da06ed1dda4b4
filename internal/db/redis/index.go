package redis

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// WriteIndex queues every RPUSH and the embedding HSET in one MULTI/EXEC.
func (s *Store) WriteIndex(ctx context.Context, postings []db.PostingRow, embedding db.EmbeddingRow) error {
	cmds, err := s.postingCommands(postings)
	if err != nil {
		return &db.Error{Op: db.OpWriteIndex, Err: err}
	}
	cmds = append(cmds, s.embeddingCommand(embedding))
	return s.exec(ctx, db.OpWriteIndex, cmds...)
}
