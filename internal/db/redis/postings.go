package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// postingEntry is the list element stored under postings:{term}.
type postingEntry struct {
	DocumentID    string  `json:"d"`
	TFIDF         float64 `json:"w"`
	TermFrequency float64 `json:"tf"`
	Positions     []int   `json:"p,omitempty"`
}

// CountPostings returns LLEN of the term's posting list.
func (s *Store) CountPostings(ctx context.Context, term string) (int, error) {
	n, err := s.do(ctx, s.b().Llen().Key(postingKeyPrefix+term).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpCountPostings, Err: err}
	}
	return int(n), nil
}

// postingCommands builds one RPUSH per row onto its term list.
func (s *Store) postingCommands(rows []db.PostingRow) ([]rueidis.Completed, error) {
	cmds := make([]rueidis.Completed, 0, len(rows))
	for _, r := range rows {
		data, err := json.Marshal(postingEntry{
			DocumentID:    r.DocumentID,
			TFIDF:         r.TFIDF,
			TermFrequency: r.TermFrequency,
			Positions:     r.Positions,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", r.Term, err)
		}
		cmds = append(cmds, s.b().Rpush().Key(postingKeyPrefix+r.Term).Element(string(data)).Build())
	}
	return cmds, nil
}

// PostingsForTerms reads every term list in a single DoMulti round-trip.
func (s *Store) PostingsForTerms(ctx context.Context, terms []string) ([]db.PostingRow, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(terms))
	for i, term := range terms {
		cmds[i] = s.b().Lrange().Key(postingKeyPrefix + term).Start(0).Stop(-1).Build()
	}

	var rows []db.PostingRow
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		elems, err := res.AsStrSlice()
		if err != nil {
			return nil, &db.Error{Op: db.OpPostingsForTerms, Err: fmt.Errorf("term %s: %w", terms[i], err)}
		}
		for _, raw := range elems {
			var e postingEntry
			if err := json.Unmarshal([]byte(raw), &e); err != nil {
				return nil, &db.Error{Op: db.OpPostingsForTerms, Err: fmt.Errorf("decode %s: %w", terms[i], err)}
			}
			rows = append(rows, db.PostingRow{
				Term:          terms[i],
				DocumentID:    e.DocumentID,
				TFIDF:         e.TFIDF,
				TermFrequency: e.TermFrequency,
				Positions:     e.Positions,
			})
		}
	}
	return rows, nil
}
