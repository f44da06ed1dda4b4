package search

import "github.com/kailas-cloud/docsearch/internal/domain/search/result"

// Hybrid weights. They sum to 1 so fused scores stay on the branch scale.
const (
	KeywordWeight  = 0.4
	SemanticWeight = 0.6
)

// fuseWeighted merges keyword and semantic hits by document id.
// hybrid = KeywordWeight*keyword + SemanticWeight*semantic, where a document
// missing from one branch contributes 0 for that branch.
func fuseWeighted(keyword, semantic []result.Scored, topK int) []result.Scored {
	merged := make(map[string]*result.Scored, len(keyword)+len(semantic))
	order := make([]string, 0, len(keyword)+len(semantic))

	for i := range keyword {
		hit := keyword[i]
		merged[hit.ID()] = &hit
		order = append(order, hit.ID())
	}
	for i := range semantic {
		hit := semantic[i]
		if existing, ok := merged[hit.ID()]; ok {
			existing.SemanticScore = hit.SemanticScore
			continue
		}
		merged[hit.ID()] = &hit
		order = append(order, hit.ID())
	}

	fused := make([]result.Scored, 0, len(order))
	for _, id := range order {
		hit := merged[id]
		hit.HybridScore = KeywordWeight*hit.KeywordScore + SemanticWeight*hit.SemanticScore
		fused = append(fused, *hit)
	}

	result.Sort(fused, result.ByHybrid)
	return result.Truncate(fused, topK)
}
