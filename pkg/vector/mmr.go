package vector

import "math"

// CosineSimilarity returns the cosine similarity of two vectors. Vectors of
// different lengths or zero magnitude score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// SelectMMR re-ranks candidates with Maximal Marginal Relevance and returns
// up to topK of them. Candidates must be ordered by descending relevance and
// carry their embeddings.
//
// Each round picks the candidate maximizing
//
//	lambda*sim(candidate, query) - (1-lambda)*max sim(candidate, selected)
//
// so lambda=1 preserves the input ordering and lower values trade relevance
// for diversity among the selected set. Selection stops when topK results
// are chosen or candidates are exhausted.
func SelectMMR(query []float32, candidates []QueryResult, topK int, lambda float32) []QueryResult {
	if topK <= 0 || len(candidates) == 0 {
		return nil
	}
	if topK > len(candidates) {
		topK = len(candidates)
	}

	relevance := make([]float32, len(candidates))
	for i, c := range candidates {
		relevance[i] = CosineSimilarity(query, c.Embedding)
	}

	selected := make([]QueryResult, 0, topK)
	picked := make([]bool, len(candidates))

	for len(selected) < topK {
		best := -1
		bestScore := float32(math.Inf(-1))

		for i, c := range candidates {
			if picked[i] {
				continue
			}

			redundancy := float32(math.Inf(-1))
			if len(selected) == 0 {
				redundancy = 0
			}
			for _, s := range selected {
				if sim := CosineSimilarity(c.Embedding, s.Embedding); sim > redundancy {
					redundancy = sim
				}
			}

			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				best = i
			}
		}

		if best < 0 {
			break
		}

		picked[best] = true
		selected = append(selected, candidates[best])
	}

	return selected
}
