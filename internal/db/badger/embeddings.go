package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/docsearch/internal/db"
)

func putEmbedding(txn *badger.Txn, row db.EmbeddingRow) error {
	if err := txn.Set([]byte(embeddingPrefix+row.DocumentID), encodeVector(row.Vector)); err != nil {
		return fmt.Errorf("set embedding %s: %w", row.DocumentID, err)
	}
	return nil
}

// ListEmbeddings returns up to limit vectors in key order.
func (s *Store) ListEmbeddings(_ context.Context, limit int) ([]db.EmbeddingRow, error) {
	if limit <= 0 {
		return nil, nil
	}

	out := make([]db.EmbeddingRow, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(out) < limit; it.Next() {
			item := it.Item()
			id := string(item.Key()[len(embeddingPrefix):])
			var vec []float32
			err := item.Value(func(val []byte) error {
				var err error
				vec, err = decodeVector(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("decode embedding %s: %w", id, err)
			}
			out = append(out, db.EmbeddingRow{DocumentID: id, Vector: vec})
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpListEmbeddings, Err: err}
	}
	return out, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector copies out of val, which is only valid inside the transaction.
func decodeVector(val []byte) ([]float32, error) {
	if len(val)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(val))
	}
	v := make([]float32, len(val)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(val[i*4:]))
	}
	return v, nil
}
