package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// CountPostings returns the number of inverted_index rows for term.
func (s *Store) CountPostings(ctx context.Context, term string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inverted_index WHERE term = $1`, term,
	).Scan(&n)
	if err != nil {
		return 0, &db.Error{Op: db.OpCountPostings, Err: err}
	}
	return n, nil
}

// insertPostings appends rows through one prepared statement on tx.
func insertPostings(ctx context.Context, tx *sql.Tx, rows []db.PostingRow) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO inverted_index (term, document_id, tf_idf, term_frequency, positions)
		 VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Term, r.DocumentID, r.TFIDF, r.TermFrequency, pq.Int64Array(toInt64s(r.Positions)),
		); err != nil {
			return fmt.Errorf("inserting posting %s/%s: %w", r.Term, r.DocumentID, err)
		}
	}
	return nil
}

// PostingsForTerms selects every row whose term is in terms.
func (s *Store) PostingsForTerms(ctx context.Context, terms []string) ([]db.PostingRow, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT term, document_id, tf_idf, term_frequency, positions
		 FROM inverted_index WHERE term = ANY($1) ORDER BY id`,
		pq.Array(terms),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpPostingsForTerms, Err: err}
	}
	defer rows.Close()

	var out []db.PostingRow
	for rows.Next() {
		var (
			r         db.PostingRow
			positions pq.Int64Array
		)
		if err := rows.Scan(&r.Term, &r.DocumentID, &r.TFIDF, &r.TermFrequency, &positions); err != nil {
			return nil, &db.Error{Op: db.OpPostingsForTerms, Err: fmt.Errorf("scanning posting row: %w", err)}
		}
		r.Positions = toInts(positions)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpPostingsForTerms, Err: err}
	}
	return out, nil
}

func toInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func toInts(in []int64) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
