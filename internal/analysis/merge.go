package analysis

import (
	"math"
	"sort"
)

// MergeUnderweight folds clusters whose total weight is below minWeight
// into their nearest neighbor by centroid cosine distance, repeating until
// every remaining cluster meets the minimum or a single cluster is left.
// Under-weight labels are visited in ascending label order, so the result
// is reproducible for a given input.
func MergeUnderweight(embeddings [][]float64, weights []int, labels []int, minWeight int) []int {
	if minWeight <= 1 {
		return labels
	}
	out := make([]int, len(labels))
	copy(out, labels)

	for {
		clusterWeights := make(map[int]int)
		for idx, label := range out {
			clusterWeights[label] += weights[idx]
		}
		if len(clusterWeights) <= 1 {
			return out
		}

		var small []int
		for label, w := range clusterWeights {
			if w < minWeight {
				small = append(small, label)
			}
		}
		if len(small) == 0 {
			return out
		}
		sort.Ints(small)

		for _, label := range small {
			if !labelPresent(out, label) {
				continue // already merged away this pass
			}
			centroids := clusterCentroids(embeddings, weights, out)
			if len(centroids) <= 1 {
				// Earlier merges in this pass already folded
				// everything into a single cluster.
				return out
			}
			target := nearestLabel(centroids, label)
			for i, l := range out {
				if l == label {
					out[i] = target
				}
			}
		}
	}
}

func labelPresent(labels []int, label int) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// clusterCentroids computes the weighted unit centroid of every cluster.
func clusterCentroids(embeddings [][]float64, weights []int, labels []int) map[int][]float64 {
	members := make(map[int][]int)
	for idx, label := range labels {
		members[label] = append(members[label], idx)
	}
	centroids := make(map[int][]float64, len(members))
	for label, idxs := range members {
		centroids[label] = weightedCentroid(embeddings, weights, idxs)
	}
	return centroids
}

// nearestLabel finds the other cluster with minimum cosine distance to the
// source cluster's centroid. Ties resolve to the lowest label.
func nearestLabel(centroids map[int][]float64, source int) int {
	sourceCentroid := centroids[source]

	others := make([]int, 0, len(centroids)-1)
	for label := range centroids {
		if label != source {
			others = append(others, label)
		}
	}
	sort.Ints(others)

	best := others[0]
	bestDist := math.Inf(1)
	for _, label := range others {
		d := cosineDistance(sourceCentroid, centroids[label])
		if d < bestDist {
			bestDist = d
			best = label
		}
	}
	return best
}
