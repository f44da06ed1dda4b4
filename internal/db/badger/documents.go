package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/docsearch/internal/db"
)

type documentRecord struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	FileType  string `json:"file_type"`
	CreatedAt int64  `json:"created_at"`
}

// InsertDocument writes the row unless the id is taken.
func (s *Store) InsertDocument(_ context.Context, row db.DocumentRow) error {
	data, err := json.Marshal(documentRecord{
		Title: row.Title, Content: row.Content, FileType: row.FileType, CreatedAt: row.CreatedAt,
	})
	if err != nil {
		return &db.Error{Op: db.OpInsertDocument, Err: err}
	}

	key := []byte(documentPrefix + row.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return db.ErrKeyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrKeyExists), errors.Is(err, badger.ErrConflict):
		return db.ErrKeyExists
	default:
		return &db.Error{Op: db.OpInsertDocument, Err: err}
	}
}

// GetDocuments reads the rows found for ids.
func (s *Store) GetDocuments(_ context.Context, ids []string) ([]db.DocumentRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]db.DocumentRow, 0, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte(documentPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var rec documentRecord
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return fmt.Errorf("decode document %s: %w", id, err)
			}
			out = append(out, db.DocumentRow{
				ID: id, Title: rec.Title, Content: rec.Content, FileType: rec.FileType, CreatedAt: rec.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpGetDocuments, Err: err}
	}
	return out, nil
}

// CountDocuments counts document keys.
func (s *Store) CountDocuments(_ context.Context) (int, error) {
	n, err := s.countPrefix([]byte(documentPrefix))
	if err != nil {
		return 0, &db.Error{Op: db.OpCountDocuments, Err: err}
	}
	return n, nil
}
