package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// embeddingCommand sets the vector as a field of the embeddings hash.
func (s *Store) embeddingCommand(row db.EmbeddingRow) rueidis.Completed {
	return s.b().Hset().Key(embeddingsKey).FieldValue().
		FieldValue(row.DocumentID, string(vectorToBytes(row.Vector))).Build()
}

// ListEmbeddings walks the embeddings hash with HSCAN until limit rows are read.
func (s *Store) ListEmbeddings(ctx context.Context, limit int) ([]db.EmbeddingRow, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows := make([]db.EmbeddingRow, 0, limit)
	var cursor uint64
	for {
		cmd := s.b().Hscan().Key(embeddingsKey).Cursor(cursor).Count(int64(limit)).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpListEmbeddings, Err: err}
		}
		for i := 0; i+1 < len(res.Elements) && len(rows) < limit; i += 2 {
			vec, err := bytesToVector([]byte(res.Elements[i+1]))
			if err != nil {
				return nil, &db.Error{Op: db.OpListEmbeddings, Err: fmt.Errorf("document %s: %w", res.Elements[i], err)}
			}
			rows = append(rows, db.EmbeddingRow{DocumentID: res.Elements[i], Vector: vec})
		}
		cursor = res.Cursor
		if cursor == 0 || len(rows) >= limit {
			break
		}
	}
	return rows, nil
}

// vectorToBytes encodes float32 slice to little-endian bytes.
func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
