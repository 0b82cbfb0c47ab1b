package analysis

import "math"

// Clusterer groups unit embeddings with weighted hierarchical agglomerative
// clustering: cosine distance, average linkage. Natural grouping is driven
// by a distance threshold; when the threshold produces more clusters than
// MaxClusters, clustering is re-run forcing exactly MaxClusters.
type Clusterer struct {
	DistanceThreshold float64
	MaxClusters       int
}

// Cluster returns one label per embedding. Labels are dense, starting at 0,
// assigned in order of each cluster's first member. Deterministic: among
// equal merge candidates the lowest pair wins.
func (c *Clusterer) Cluster(embeddings [][]float64) []int {
	n := len(embeddings)
	if n <= 1 {
		return make([]int, n)
	}

	labels := agglomerate(embeddings, c.DistanceThreshold, 1)
	if c.MaxClusters > 0 && countLabels(labels) > c.MaxClusters {
		labels = agglomerate(embeddings, math.Inf(1), c.MaxClusters)
	}
	return labels
}

// agglomerate merges clusters bottom-up until the closest pair is farther
// apart than threshold, or until minClusters remain, whichever comes first.
func agglomerate(embeddings [][]float64, threshold float64, minClusters int) []int {
	n := len(embeddings)

	// Pairwise cosine distance matrix over the points.
	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				dist[i][j] = cosineDistance(embeddings[i], embeddings[j])
			}
		}
	}

	// Each point starts as its own cluster.
	clusters := make([][]int, n)
	for i := 0; i < n; i++ {
		clusters[i] = []int{i}
	}

	for len(clusters) > minClusters {
		minDist := math.Inf(1)
		mergeI, mergeJ := -1, -1

		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				// Average linkage distance between clusters.
				avgDist := 0.0
				count := 0
				for _, idxI := range clusters[i] {
					for _, idxJ := range clusters[j] {
						avgDist += dist[idxI][idxJ]
						count++
					}
				}
				if count > 0 {
					avgDist /= float64(count)
				}
				if avgDist < minDist {
					minDist = avgDist
					mergeI = i
					mergeJ = j
				}
			}
		}

		if mergeI == -1 || minDist > threshold {
			break
		}

		clusters[mergeI] = append(clusters[mergeI], clusters[mergeJ]...)
		clusters = append(clusters[:mergeJ], clusters[mergeJ+1:]...)
	}

	return labelsFromClusters(clusters, n)
}

// labelsFromClusters assigns dense labels ordered by each cluster's
// smallest member index.
func labelsFromClusters(clusters [][]int, n int) []int {
	labels := make([]int, n)
	order := make([]int, 0, len(clusters))
	minMember := make(map[int]int, len(clusters))
	for ci, members := range clusters {
		min := members[0]
		for _, m := range members {
			if m < min {
				min = m
			}
		}
		minMember[ci] = min
		order = append(order, ci)
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if minMember[order[j]] < minMember[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	for label, ci := range order {
		for _, m := range clusters[ci] {
			labels[m] = label
		}
	}
	return labels
}

func countLabels(labels []int) int {
	seen := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}
