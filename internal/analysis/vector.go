package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}

// cosineDistance converts similarity to distance.
func cosineDistance(a, b []float64) float64 {
	return 1.0 - cosineSimilarity(a, b)
}

// weightedCentroid computes the weighted mean of the member embeddings,
// re-normalized to unit length.
func weightedCentroid(embeddings [][]float64, weights []int, members []int) []float64 {
	if len(members) == 0 || len(embeddings) == 0 {
		return nil
	}
	dim := len(embeddings[members[0]])
	centroid := make([]float64, dim)
	var total float64
	for _, idx := range members {
		w := float64(weights[idx])
		floats.AddScaled(centroid, w, embeddings[idx])
		total += w
	}
	if total > 0 {
		floats.Scale(1/total, centroid)
	}
	norm := math.Sqrt(floats.Dot(centroid, centroid))
	if norm > 0 {
		floats.Scale(1/norm, centroid)
	}
	return centroid
}
