package analysis

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"insightapi/internal/oracle"
)

const (
	kmeansSeed       = 42
	kmeansMaxIter    = 50
	minThemes        = 2
	maxThemes        = 8
	repetitionCap    = 3
	minSummaryWords  = 8
	maxThemeLabelLen = 80
)

// ThemeSummarizer produces a bounded list of theme labels across a whole
// answer set. Answers are clustered with fixed-seed k-means and each
// cluster is labeled by a cascade: abstractive summary, then multi-word
// key phrase, then raw snippet. Below two distinct answers the clustering
// model is never invoked and extraction delegates to the per-answer path.
type ThemeSummarizer struct {
	embedder  oracle.Embedder
	generator oracle.Generator
	extractor *IdeaExtractor
	logger    *zap.Logger
}

func NewThemeSummarizer(embedder oracle.Embedder, generator oracle.Generator, extractor *IdeaExtractor, logger *zap.Logger) *ThemeSummarizer {
	return &ThemeSummarizer{
		embedder:  embedder,
		generator: generator,
		extractor: extractor,
		logger:    logger,
	}
}

// TopIdeas returns up to limit theme labels for the answer set.
func (t *ThemeSummarizer) TopIdeas(ctx context.Context, answers []string, questionText string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	texts := Normalize(answers)
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) < 2 {
		return t.extractor.Extract(ctx, texts[0].Text, questionText, limit), nil
	}

	embeddings := make([][]float64, len(texts))
	weights := make([]int, len(texts))
	for i, nt := range texts {
		vec, err := t.embedder.Embed(ctx, nt.Text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
		weights[i] = nt.Weight
	}

	k := themeClusterCount(len(texts))
	labels := kMeansLabels(embeddings, weights, k, kmeansSeed)

	clusters := clustersByWeight(labels, weights)
	t.logger.Debug("theme clustering",
		zap.Int("unique", len(texts)),
		zap.Int("k", k),
		zap.Int("clusters", len(clusters)))

	var ideas []string
	for _, cluster := range clusters {
		if len(ideas) >= limit {
			break
		}
		label := t.labelCluster(ctx, texts, questionText, cluster.members, weights)
		if label != "" {
			ideas = append(ideas, label)
		}
	}
	return ideas, nil
}

// labelCluster runs the summary -> phrase -> snippet cascade.
func (t *ThemeSummarizer) labelCluster(ctx context.Context, texts []NormalizedText, questionText string, members []int, weights []int) string {
	clusterText := weightedClusterText(texts, members)

	if len(wordRe.FindAllString(clusterText, -1)) >= minSummaryWords {
		if summary := t.abstractiveSummary(ctx, clusterText); summary != "" {
			return summary
		}
	}

	phrase, err := t.extractor.MultiwordPhrase(ctx, clusterText, questionText)
	if err != nil {
		t.logger.Debug("cluster phrase extraction unavailable", zap.Error(err))
	}
	if phrase != "" {
		return phrase
	}

	heaviest := members[0]
	for _, idx := range members {
		if weights[idx] > weights[heaviest] {
			heaviest = idx
		}
	}
	return truncateText(texts[heaviest].Text, maxThemeLabelLen)
}

// abstractiveSummary asks the generative oracle for a one-sentence theme.
// Any failure returns "" so the cascade can continue.
func (t *ThemeSummarizer) abstractiveSummary(ctx context.Context, clusterText string) string {
	out, err := t.generator.Generate(ctx,
		"Summarize the common theme of these survey answers in one short sentence: "+clusterText,
		oracle.GenerateParams{MaxNewTokens: 32})
	if err != nil {
		t.logger.Debug("theme summary generation failed", zap.Error(err))
		return ""
	}
	out = normalizeParaphrase(out)
	if out == "" {
		return ""
	}
	return truncateText(out, maxThemeLabelLen)
}

// weightedClusterText joins member texts, repeating each at most
// repetitionCap times so one duplicated answer cannot dominate.
func weightedClusterText(texts []NormalizedText, members []int) string {
	var parts []string
	for _, idx := range members {
		reps := texts[idx].Weight
		if reps > repetitionCap {
			reps = repetitionCap
		}
		for r := 0; r < reps; r++ {
			parts = append(parts, texts[idx].Text)
		}
	}
	return strings.Join(parts, ". ")
}

// themeClusterCount is clamp(round(sqrt(n)), 2, 8), never exceeding n.
func themeClusterCount(n int) int {
	k := int(math.Round(math.Sqrt(float64(n))))
	if k < minThemes {
		k = minThemes
	}
	if k > maxThemes {
		k = maxThemes
	}
	if k > n {
		k = n
	}
	return k
}

type themeCluster struct {
	members []int
	weight  int
}

// clustersByWeight groups indices by label and orders clusters by total
// weight descending, lowest first-member index first among equals.
func clustersByWeight(labels []int, weights []int) []themeCluster {
	byLabel := make(map[int][]int)
	for idx, label := range labels {
		byLabel[label] = append(byLabel[label], idx)
	}
	clusters := make([]themeCluster, 0, len(byLabel))
	for _, members := range byLabel {
		total := 0
		for _, idx := range members {
			total += weights[idx]
		}
		clusters = append(clusters, themeCluster{members: members, weight: total})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].weight != clusters[j].weight {
			return clusters[i].weight > clusters[j].weight
		}
		return clusters[i].members[0] < clusters[j].members[0]
	})
	return clusters
}

// kMeansLabels clusters unit embeddings into k groups with weighted
// k-means under cosine distance. The seed fixes both the k-means++
// initialization and therefore the full run: identical input always yields
// identical assignments.
func kMeansLabels(embeddings [][]float64, weights []int, k int, seed int64) []int {
	n := len(embeddings)
	if n == 0 {
		return nil
	}
	if k >= n {
		labels := make([]int, n)
		for i := range labels {
			labels[i] = i
		}
		return labels
	}

	rng := rand.New(rand.NewSource(seed))
	dim := len(embeddings[0])
	centroids := initCentroids(embeddings, k, rng)

	labels := make([]int, n)
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, vec := range embeddings {
			best, bestDist := 0, math.Inf(1)
			for c := 0; c < k; c++ {
				d := cosineDistance(vec, centroids.RawRowView(c))
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Weighted centroid update.
		next := mat.NewDense(k, dim, nil)
		totals := make([]float64, k)
		for i, vec := range embeddings {
			c := labels[i]
			w := float64(weights[i])
			for j := 0; j < dim; j++ {
				next.Set(c, j, next.At(c, j)+w*vec[j])
			}
			totals[c] += w
		}
		for c := 0; c < k; c++ {
			if totals[c] == 0 {
				// Empty cluster keeps its previous centroid.
				next.SetRow(c, centroids.RawRowView(c))
				continue
			}
			for j := 0; j < dim; j++ {
				next.Set(c, j, next.At(c, j)/totals[c])
			}
		}
		centroids = next
	}
	return labels
}

// initCentroids seeds k-means++ style: the first centroid is the heaviest
// point, each next is the point farthest from its nearest chosen centroid,
// with the rng breaking exact ties.
func initCentroids(embeddings [][]float64, k int, rng *rand.Rand) *mat.Dense {
	n := len(embeddings)
	dim := len(embeddings[0])
	centroids := mat.NewDense(k, dim, nil)
	centroids.SetRow(0, embeddings[0])

	chosen := []int{0}
	for c := 1; c < k; c++ {
		bestIdx, bestDist := -1, -1.0
		for i := 0; i < n; i++ {
			minDist := math.Inf(1)
			for _, ch := range chosen {
				if d := cosineDistance(embeddings[i], embeddings[ch]); d < minDist {
					minDist = d
				}
			}
			if minDist > bestDist {
				bestDist = minDist
				bestIdx = i
			} else if minDist == bestDist && rng.Intn(2) == 0 {
				bestIdx = i
			}
		}
		chosen = append(chosen, bestIdx)
		centroids.SetRow(c, embeddings[bestIdx])
	}
	return centroids
}
