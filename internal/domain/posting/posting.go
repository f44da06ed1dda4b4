package posting

import (
	"fmt"
	"math"
)

// Posting is one (term, document) entry of the inverted index.
type Posting struct {
	Term          string
	DocumentID    string
	TFIDF         float64
	TermFrequency float64
	// Positions are token offsets; stored for compatibility, never scored.
	Positions []int
}

// Validate rejects postings with missing keys or non-finite weights.
func (p *Posting) Validate() error {
	if p.Term == "" {
		return fmt.Errorf("posting term is empty")
	}
	if p.DocumentID == "" {
		return fmt.Errorf("posting for %q has no document id", p.Term)
	}
	if math.IsNaN(p.TFIDF) || math.IsInf(p.TFIDF, 0) {
		return fmt.Errorf("posting %q/%q has non-finite tf_idf", p.Term, p.DocumentID)
	}
	if p.TermFrequency < 0 || p.TermFrequency > 1 || math.IsNaN(p.TermFrequency) {
		return fmt.Errorf("posting %q/%q has term frequency out of range", p.Term, p.DocumentID)
	}
	return nil
}

// SumByDocument aggregates tf_idf per document.
func SumByDocument(postings []Posting) map[string]float64 {
	scores := make(map[string]float64)
	for _, p := range postings {
		scores[p.DocumentID] += p.TFIDF
	}
	return scores
}
