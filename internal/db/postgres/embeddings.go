package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// upsertEmbedding replaces any vector already stored for the document.
func upsertEmbedding(ctx context.Context, tx *sql.Tx, row db.EmbeddingRow) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO document_embeddings (document_id, embedding) VALUES ($1, $2)
		 ON CONFLICT (document_id) DO UPDATE SET embedding = EXCLUDED.embedding`,
		row.DocumentID, pq.Float64Array(toFloat64s(row.Vector)),
	)
	if err != nil {
		return fmt.Errorf("upserting embedding %s: %w", row.DocumentID, err)
	}
	return nil
}

// ListEmbeddings returns up to limit rows in storage order.
func (s *Store) ListEmbeddings(ctx context.Context, limit int) ([]db.EmbeddingRow, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, embedding FROM document_embeddings LIMIT $1`, limit,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpListEmbeddings, Err: err}
	}
	defer rows.Close()

	out := make([]db.EmbeddingRow, 0, limit)
	for rows.Next() {
		var (
			id  string
			vec pq.Float64Array
		)
		if err := rows.Scan(&id, &vec); err != nil {
			return nil, &db.Error{Op: db.OpListEmbeddings, Err: fmt.Errorf("scanning embedding row: %w", err)}
		}
		out = append(out, db.EmbeddingRow{DocumentID: id, Vector: toFloat32s(vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpListEmbeddings, Err: err}
	}
	return out, nil
}

func toFloat64s(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func toFloat32s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
