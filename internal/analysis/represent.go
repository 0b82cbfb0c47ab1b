package analysis

import "math"

// Representative picks the cluster member nearest to the cluster's weighted
// centroid by cosine distance. The first member in enumeration order wins
// ties. Returns -1 for an empty member list.
func Representative(embeddings [][]float64, weights []int, members []int) int {
	if len(members) == 0 {
		return -1
	}
	centroid := weightedCentroid(embeddings, weights, members)

	best := -1
	bestDist := math.Inf(1)
	for _, idx := range members {
		d := cosineDistance(centroid, embeddings[idx])
		if d < bestDist {
			bestDist = d
			best = idx
		}
	}
	return best
}

// rankByCentroidDistance orders members by ascending distance to the
// cluster centroid, keeping enumeration order among equals.
func rankByCentroidDistance(embeddings [][]float64, weights []int, members []int) []int {
	centroid := weightedCentroid(embeddings, weights, members)
	ranked := make([]int, len(members))
	copy(ranked, members)
	dist := make(map[int]float64, len(members))
	for _, idx := range members {
		dist[idx] = cosineDistance(centroid, embeddings[idx])
	}
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			if dist[ranked[j]] < dist[ranked[i]] {
				ranked[i], ranked[j] = ranked[j], ranked[i]
			}
		}
	}
	return ranked
}
