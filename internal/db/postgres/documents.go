package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// InsertDocument inserts one row; a taken id yields db.ErrKeyExists.
func (s *Store) InsertDocument(ctx context.Context, row db.DocumentRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, content, file_type, created_at) VALUES ($1, $2, $3, $4, $5)`,
		row.ID, row.Title, row.Content, row.FileType, row.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return db.ErrKeyExists
		}
		return &db.Error{Op: db.OpInsertDocument, Err: err}
	}
	return nil
}

// GetDocuments selects the rows whose id is in ids.
func (s *Store) GetDocuments(ctx context.Context, ids []string) ([]db.DocumentRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, file_type, created_at FROM documents WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpGetDocuments, Err: err}
	}
	defer rows.Close()

	out := make([]db.DocumentRow, 0, len(ids))
	for rows.Next() {
		var r db.DocumentRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Content, &r.FileType, &r.CreatedAt); err != nil {
			return nil, &db.Error{Op: db.OpGetDocuments, Err: fmt.Errorf("scanning document row: %w", err)}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpGetDocuments, Err: err}
	}
	return out, nil
}

// CountDocuments returns the number of rows in documents.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCountDocuments, Err: err}
	}
	return n, nil
}
