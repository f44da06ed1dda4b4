package text

import (
	"math"
	"slices"
	"testing"
)

const eps = 1e-9

func TestTermFrequencies(t *testing.T) {
	freq := TermFrequencies([]string{"dogs", "are", "dogs", "loyal"})
	if len(freq) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(freq))
	}
	if math.Abs(freq["dogs"]-0.5) > eps {
		t.Errorf("tf(dogs) = %f, want 0.5", freq["dogs"])
	}
	if math.Abs(freq["loyal"]-0.25) > eps {
		t.Errorf("tf(loyal) = %f, want 0.25", freq["loyal"])
	}
}

func TestTermFrequencies_Empty(t *testing.T) {
	if got := TermFrequencies(nil); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestAnalyze(t *testing.T) {
	stats := Analyze(Tokenize("cats chase cats and mice"))
	if len(stats) != 4 {
		t.Fatalf("expected 4 terms, got %d", len(stats))
	}
	if stats[0].Term != "cats" {
		t.Errorf("first term = %q, want cats", stats[0].Term)
	}
	if !slices.Equal(stats[0].Positions, []int{0, 2}) {
		t.Errorf("positions(cats) = %v, want [0 2]", stats[0].Positions)
	}
	if math.Abs(stats[0].Frequency-0.4) > eps {
		t.Errorf("tf(cats) = %f, want 0.4", stats[0].Frequency)
	}
	if stats[3].Term != "mice" || !slices.Equal(stats[3].Positions, []int{4}) {
		t.Errorf("unexpected last stat: %+v", stats[3])
	}
}

func TestAnalyze_CoversDistinctTokens(t *testing.T) {
	tokens := Tokenize("the quick brown fox jumps over the lazy dog")
	stats := Analyze(tokens)
	terms := make([]string, 0, len(stats))
	for _, s := range stats {
		terms = append(terms, s.Term)
	}
	if !slices.Equal(terms, Distinct(tokens)) {
		t.Errorf("terms = %q, want %q", terms, Distinct(tokens))
	}
}

func TestIDF(t *testing.T) {
	tests := []struct {
		name  string
		n, df int
		want  float64
	}{
		{"single document corpus", 1, 0, 0},
		{"empty corpus treated as one", 0, 0, 0},
		{"negative df treated as zero", 1, -3, 0},
		{"rare term", 10, 0, math.Log(10)},
		{"common term", 10, 4, math.Log(2)},
		{"term in every other doc", 2, 1, 0},
		{"df above n goes negative", 2, 3, math.Log(0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IDF(tt.n, tt.df); math.Abs(got-tt.want) > eps {
				t.Errorf("IDF(%d, %d) = %f, want %f", tt.n, tt.df, got, tt.want)
			}
		})
	}
}

func TestTFIDF_SingleDocumentCorpusIsZero(t *testing.T) {
	for _, s := range Analyze(Tokenize("cats are great pets")) {
		if w := TFIDF(s.Frequency, IDF(1, 0)); w != 0 {
			t.Errorf("tf_idf(%s) = %f, want 0", s.Term, w)
		}
	}
}
