package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/docsearch/internal/db"
)

type postingRecord struct {
	DocumentID    string  `json:"document_id"`
	TFIDF         float64 `json:"tf_idf"`
	TermFrequency float64 `json:"term_frequency"`
	Positions     []int   `json:"positions,omitempty"`
}

func termPrefix(term string) []byte {
	return []byte(postingPrefix + term + "/")
}

// CountPostings counts the keys under the term prefix.
func (s *Store) CountPostings(_ context.Context, term string) (int, error) {
	n, err := s.countPrefix(termPrefix(term))
	if err != nil {
		return 0, &db.Error{Op: db.OpCountPostings, Err: err}
	}
	return n, nil
}

// putPostings stages rows on txn. Each posting gets a fresh sequence number,
// so repeated writes are kept side by side.
func (s *Store) putPostings(txn *badger.Txn, rows []db.PostingRow) error {
	for _, r := range rows {
		n, err := s.seq.Next()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		data, err := json.Marshal(postingRecord{
			DocumentID: r.DocumentID, TFIDF: r.TFIDF, TermFrequency: r.TermFrequency, Positions: r.Positions,
		})
		if err != nil {
			return fmt.Errorf("marshal %s: %w", r.Term, err)
		}
		key := fmt.Appendf(termPrefix(r.Term), "%016x", n)
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set %s: %w", r.Term, err)
		}
	}
	return nil
}

// PostingsForTerms iterates every term prefix in one read transaction.
func (s *Store) PostingsForTerms(_ context.Context, terms []string) ([]db.PostingRow, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	var out []db.PostingRow
	err := s.db.View(func(txn *badger.Txn) error {
		for _, term := range terms {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = termPrefix(term)
			it := txn.NewIterator(opts)
			for it.Rewind(); it.Valid(); it.Next() {
				var rec postingRecord
				if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
					it.Close()
					return fmt.Errorf("decode posting %s: %w", term, err)
				}
				out = append(out, db.PostingRow{
					Term:          term,
					DocumentID:    rec.DocumentID,
					TFIDF:         rec.TFIDF,
					TermFrequency: rec.TermFrequency,
					Positions:     rec.Positions,
				})
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpPostingsForTerms, Err: err}
	}
	return out, nil
}
