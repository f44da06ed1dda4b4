package text

import "math"

// TermStat is the per-document statistic for one distinct term.
type TermStat struct {
	Term string
	// Frequency is count(term) / len(tokens).
	Frequency float64
	// Positions are the offsets of the term in the token sequence.
	Positions []int
}

// TermFrequencies maps every distinct token to count/total.
func TermFrequencies(tokens []string) map[string]float64 {
	freq := make(map[string]float64, len(tokens))
	if len(tokens) == 0 {
		return freq
	}
	for _, t := range tokens {
		freq[t]++
	}
	total := float64(len(tokens))
	for term, c := range freq {
		freq[term] = c / total
	}
	return freq
}

// Analyze returns one TermStat per distinct token, in first-occurrence order.
func Analyze(tokens []string) []TermStat {
	freq := TermFrequencies(tokens)
	index := make(map[string]int, len(freq))
	stats := make([]TermStat, 0, len(freq))
	for pos, t := range tokens {
		i, ok := index[t]
		if !ok {
			i = len(stats)
			index[t] = i
			stats = append(stats, TermStat{Term: t, Frequency: freq[t]})
		}
		stats[i].Positions = append(stats[i].Positions, pos)
	}
	return stats
}

// IDF returns ln(n / (df + 1)). A non-positive corpus size counts as 1 and
// a negative document frequency as 0.
func IDF(n, df int) float64 {
	if n <= 0 {
		n = 1
	}
	if df < 0 {
		df = 0
	}
	return math.Log(float64(n) / float64(df+1))
}

// TFIDF combines a normalized term frequency with an inverse document frequency.
func TFIDF(tf, idf float64) float64 {
	return tf * idf
}
