package posting

import (
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := Posting{Term: "cats", DocumentID: "d1", TFIDF: 0.1, TermFrequency: 0.25, Positions: []int{0}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := []Posting{
		{DocumentID: "d1"},
		{Term: "cats"},
		{Term: "cats", DocumentID: "d1", TFIDF: math.NaN()},
		{Term: "cats", DocumentID: "d1", TFIDF: math.Inf(1)},
		{Term: "cats", DocumentID: "d1", TermFrequency: 1.5},
		{Term: "cats", DocumentID: "d1", TermFrequency: -0.1},
	}
	for i, p := range invalid {
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: expected error for %+v", i, p)
		}
	}
}

func TestValidate_NegativeWeightAllowed(t *testing.T) {
	// ln(N/(df+1)) goes negative once df >= N.
	p := Posting{Term: "the", DocumentID: "d1", TFIDF: -0.05, TermFrequency: 0.5}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSumByDocument(t *testing.T) {
	scores := SumByDocument([]Posting{
		{Term: "cats", DocumentID: "d1", TFIDF: 0.2},
		{Term: "pets", DocumentID: "d1", TFIDF: 0.3},
		{Term: "cats", DocumentID: "d2", TFIDF: 0.1},
		{Term: "cats", DocumentID: "d2", TFIDF: 0.1},
	})
	if math.Abs(scores["d1"]-0.5) > 1e-9 {
		t.Errorf("d1 = %f, want 0.5", scores["d1"])
	}
	// duplicate postings are summed, not collapsed
	if math.Abs(scores["d2"]-0.2) > 1e-9 {
		t.Errorf("d2 = %f, want 0.2", scores["d2"])
	}
}
