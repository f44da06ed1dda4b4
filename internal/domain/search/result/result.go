package result

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/docsearch/internal/domain/document"
)

// Scored is a single ranked hit. Signals that were not computed stay zero.
type Scored struct {
	Document      document.Document
	KeywordScore  float64
	SemanticScore float64
	HybridScore   float64
}

// ID returns the document identifier.
func (s *Scored) ID() string { return s.Document.ID() }

// ScoreFunc selects the ordering score of a hit.
type ScoreFunc func(Scored) float64

// ByKeyword orders by keyword score.
func ByKeyword(s Scored) float64 { return s.KeywordScore }

// BySemantic orders by semantic score.
func BySemantic(s Scored) float64 { return s.SemanticScore }

// ByHybrid orders by fused score.
func ByHybrid(s Scored) float64 { return s.HybridScore }

// Sort orders hits by score descending, then document id ascending.
func Sort(hits []Scored, score ScoreFunc) {
	slices.SortStableFunc(hits, func(a, b Scored) int {
		if c := cmp.Compare(score(b), score(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
}

// Truncate returns at most k hits.
func Truncate(hits []Scored, k int) []Scored {
	if len(hits) > k {
		return hits[:k]
	}
	return hits
}
