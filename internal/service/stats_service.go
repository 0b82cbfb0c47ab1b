package service

import (
	"context"

	"insightapi/internal/model"
	"insightapi/internal/repository"
)

const defaultIdeaLimit = 20

// StatsService computes corpus-wide statistics from stored analyses.
// Everything is derived by aggregation at read time; no counters are kept.
type StatsService struct {
	repo repository.AnalysisRepo
}

func NewStatsService(repo repository.AnalysisRepo) *StatsService {
	return &StatsService{repo: repo}
}

// GetSentimentStats returns per-label answer counts with percentages over
// the total number of analyzed answers.
func (s *StatsService) GetSentimentStats(ctx context.Context) (*model.SentimentStatsResponse, error) {
	stats, err := s.repo.SentimentCounts(ctx)
	if err != nil {
		return nil, err
	}

	if stats == nil {
		// Empty corpus still serializes as an empty array.
		stats = []model.SentimentStat{}
	}

	total := 0
	for _, stat := range stats {
		total += stat.Count
	}
	for i := range stats {
		if total > 0 {
			stats[i].Percentage = float64(stats[i].Count) / float64(total) * 100
		} else {
			stats[i].Percentage = 0
		}
	}

	return &model.SentimentStatsResponse{
		Stats:         stats,
		TotalAnalyzed: total,
	}, nil
}

// GetFrequentIdeas returns the most frequent aggregated ideas across all
// stored analyses. Percentages are relative to the returned slice, not the
// whole corpus; TotalIdeas counts every distinct idea stored.
func (s *StatsService) GetFrequentIdeas(ctx context.Context, limit int) (*model.FrequentIdeasResponse, error) {
	if limit <= 0 {
		limit = defaultIdeaLimit
	}

	ideas, err := s.repo.FrequentIdeas(ctx, limit)
	if err != nil {
		return nil, err
	}
	totalIdeas, err := s.repo.CountDistinctIdeas(ctx)
	if err != nil {
		return nil, err
	}
	if ideas == nil {
		ideas = []model.IdeaFrequency{}
	}

	totalFreq := 0
	for _, idea := range ideas {
		totalFreq += idea.Frequency
	}
	for i := range ideas {
		if totalFreq > 0 {
			ideas[i].Percentage = float64(ideas[i].Frequency) / float64(totalFreq) * 100
		} else {
			ideas[i].Percentage = 0
		}
	}

	return &model.FrequentIdeasResponse{
		Ideas:      ideas,
		TotalIdeas: totalIdeas,
	}, nil
}
