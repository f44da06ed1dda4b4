// Package vector implements the similarity math used by semantic retrieval.
package vector

import (
	"cmp"
	"errors"
	"math"
	"slices"
)

var (
	// ErrEmptyVector is returned for zero-length input.
	ErrEmptyVector = errors.New("empty vector")
	// ErrDimensionMismatch is returned when vectors differ in length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrZeroVector is returned when either vector has zero magnitude.
	ErrZeroVector = errors.New("zero-magnitude vector")
)

// Cosine returns dot(a,b) / (|a| * |b|), in [-1, 1]. Mismatched dimensions are
// rejected, never truncated or padded.
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyVector
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, ErrZeroVector
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// clamp float drift
	return math.Max(-1, math.Min(1, sim)), nil
}

// Candidate is a stored vector keyed by the owning document.
type Candidate struct {
	ID     string
	Vector []float32
}

// Match is a candidate scored against a query.
type Match struct {
	ID         string
	Similarity float64
}

// Skipped records a candidate that could not be scored.
type Skipped struct {
	ID  string
	Err error
}

// TopK scores every candidate against query and returns the k most similar,
// ordered by similarity descending then id ascending. Candidates that fail
// Cosine are returned in skipped instead of aborting the scan.
func TopK(query []float32, candidates []Candidate, k int) (matches []Match, skipped []Skipped) {
	matches = make([]Match, 0, len(candidates))
	for _, c := range candidates {
		sim, err := Cosine(query, c.Vector)
		if err != nil {
			skipped = append(skipped, Skipped{ID: c.ID, Err: err})
			continue
		}
		matches = append(matches, Match{ID: c.ID, Similarity: sim})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if k >= 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, skipped
}
