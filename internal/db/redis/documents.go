package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

const (
	fieldTitle     = "title"
	fieldContent   = "content"
	fieldFileType  = "file_type"
	fieldCreatedAt = "created_at"
)

// InsertDocument claims the id in the document set, then writes the hash.
func (s *Store) InsertDocument(ctx context.Context, row db.DocumentRow) error {
	added, err := s.do(ctx, s.b().Sadd().Key(documentSetKey).Member(row.ID).Build()).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpInsertDocument, Err: err}
	}
	if added == 0 {
		return db.ErrKeyExists
	}

	cmd := s.b().Hset().Key(documentKeyPrefix+row.ID).FieldValue().
		FieldValue(fieldTitle, row.Title).
		FieldValue(fieldContent, row.Content).
		FieldValue(fieldFileType, row.FileType).
		FieldValue(fieldCreatedAt, strconv.FormatInt(row.CreatedAt, 10))
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		// release the id so a retry can succeed
		_ = s.do(ctx, s.b().Srem().Key(documentSetKey).Member(row.ID).Build()).Error()
		return &db.Error{Op: db.OpInsertDocument, Err: err}
	}
	return nil
}

// GetDocuments fetches all hashes in a single DoMulti round-trip.
func (s *Store) GetDocuments(ctx context.Context, ids []string) ([]db.DocumentRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(ids))
	for i, id := range ids {
		cmds[i] = s.b().Hgetall().Key(documentKeyPrefix + id).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	rows := make([]db.DocumentRow, 0, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpGetDocuments, Err: fmt.Errorf("key %s: %w", ids[i], err)}
		}
		if len(m) == 0 {
			continue
		}
		row, err := parseDocumentHash(ids[i], m)
		if err != nil {
			return nil, &db.Error{Op: db.OpGetDocuments, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CountDocuments returns the cardinality of the document set.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	n, err := s.do(ctx, s.b().Scard().Key(documentSetKey).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpCountDocuments, Err: err}
	}
	return int(n), nil
}

func parseDocumentHash(id string, m map[string]string) (db.DocumentRow, error) {
	row := db.DocumentRow{
		ID:       id,
		Title:    m[fieldTitle],
		Content:  m[fieldContent],
		FileType: m[fieldFileType],
	}
	if v, ok := m[fieldCreatedAt]; ok && v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return db.DocumentRow{}, fmt.Errorf("document %s: parse %s: %w", id, fieldCreatedAt, err)
		}
		row.CreatedAt = ts
	}
	return row, nil
}
