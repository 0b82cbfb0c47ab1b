package analysis

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"insightapi/internal/config"
	"insightapi/internal/model"
	"insightapi/internal/oracle"
)

// ClusterSummarizer turns an answer set into a bounded list of cluster
// summaries: normalize and weight unique texts, embed them, cluster with a
// distance threshold under a hard count cap, fold under-weight clusters
// into their nearest neighbor, pick each cluster's representative, and
// paraphrase it into a label.
type ClusterSummarizer struct {
	embedder oracle.Embedder
	rewriter *Rewriter
	cfg      *config.AIConfig
	logger   *zap.Logger
}

func NewClusterSummarizer(embedder oracle.Embedder, rewriter *Rewriter, cfg *config.AIConfig, logger *zap.Logger) *ClusterSummarizer {
	return &ClusterSummarizer{
		embedder: embedder,
		rewriter: rewriter,
		cfg:      cfg,
		logger:   logger,
	}
}

// Summarize returns one summary per surviving cluster, ordered by cluster
// weight descending.
func (s *ClusterSummarizer) Summarize(ctx context.Context, answers []string) ([]model.ClusterSummary, error) {
	texts := Normalize(answers)
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float64, len(texts))
	weights := make([]int, len(texts))
	for i, nt := range texts {
		vec, err := s.embedder.Embed(ctx, nt.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding answers failed: %w", err)
		}
		embeddings[i] = vec
		weights[i] = nt.Weight
	}

	clusterer := &Clusterer{
		DistanceThreshold: s.cfg.ClusterDistanceThreshold,
		MaxClusters:       s.cfg.ClusterMaxCount,
	}
	labels := clusterer.Cluster(embeddings)
	labels = MergeUnderweight(embeddings, weights, labels, s.cfg.ClusterMinWeight)

	members := make(map[int][]int)
	for idx, label := range labels {
		members[label] = append(members[label], idx)
	}
	ordered := make([]int, 0, len(members))
	for label := range members {
		ordered = append(ordered, label)
	}
	sort.Ints(ordered)

	summaries := make([]model.ClusterSummary, 0, len(ordered))
	for _, label := range ordered {
		idxs := members[label]
		count := 0
		for _, idx := range idxs {
			count += weights[idx]
		}

		rep := Representative(embeddings, weights, idxs)
		if rep < 0 {
			continue
		}
		s.logClusterExamples(label, texts, embeddings, weights, idxs)

		summary, err := s.rewriter.RewriteOrFallback(ctx, texts[rep].Text)
		if err != nil {
			return nil, err
		}
		if summary == "" {
			continue
		}
		summaries = append(summaries, model.ClusterSummary{Summary: summary, Count: count})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Count > summaries[j].Count
	})
	return summaries, nil
}

// logClusterExamples records the members closest to the centroid, capped by
// MaxClusterExamples, for debugging cluster quality.
func (s *ClusterSummarizer) logClusterExamples(label int, texts []NormalizedText, embeddings [][]float64, weights []int, members []int) {
	if !s.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	ranked := rankByCentroidDistance(embeddings, weights, members)
	if len(ranked) > s.cfg.MaxClusterExamples {
		ranked = ranked[:s.cfg.MaxClusterExamples]
	}
	examples := make([]string, len(ranked))
	for i, idx := range ranked {
		examples[i] = truncateText(texts[idx].Text, 80)
	}
	s.logger.Debug("cluster examples",
		zap.Int("cluster", label),
		zap.Strings("examples", examples))
}
