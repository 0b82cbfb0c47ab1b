package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"insightapi/internal/model"
)

func TestGetSentimentStats_Percentages(t *testing.T) {
	repo := newStubRepo()
	repo.stats = []model.SentimentStat{
		{Sentiment: model.SentimentPositive, Count: 6},
		{Sentiment: model.SentimentNegative, Count: 3},
		{Sentiment: model.SentimentNeutral, Count: 1},
	}
	svc := NewStatsService(repo)

	resp, err := svc.GetSentimentStats(context.Background())
	if err != nil {
		t.Fatalf("GetSentimentStats error: %v", err)
	}

	if resp.TotalAnalyzed != 10 {
		t.Errorf("TotalAnalyzed = %d, want 10", resp.TotalAnalyzed)
	}
	if resp.Stats[0].Percentage != 60 || resp.Stats[1].Percentage != 30 || resp.Stats[2].Percentage != 10 {
		t.Errorf("unexpected percentages: %+v", resp.Stats)
	}

	sum := 0.0
	for _, s := range resp.Stats {
		sum += s.Percentage
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
}

func TestGetSentimentStats_EmptyCorpus(t *testing.T) {
	svc := NewStatsService(newStubRepo())

	resp, err := svc.GetSentimentStats(context.Background())
	if err != nil {
		t.Fatalf("GetSentimentStats error: %v", err)
	}
	if resp.TotalAnalyzed != 0 {
		t.Errorf("TotalAnalyzed = %d, want 0", resp.TotalAnalyzed)
	}
	if len(resp.Stats) != 0 {
		t.Errorf("expected no stats, got %+v", resp.Stats)
	}
	if resp.Stats == nil {
		t.Error("empty corpus must serialize stats as [], not null")
	}
}

func TestGetSentimentStats_ZeroCountsYieldZeroPercent(t *testing.T) {
	repo := newStubRepo()
	repo.stats = []model.SentimentStat{{Sentiment: model.SentimentNeutral, Count: 0}}
	svc := NewStatsService(repo)

	resp, err := svc.GetSentimentStats(context.Background())
	if err != nil {
		t.Fatalf("GetSentimentStats error: %v", err)
	}
	if resp.Stats[0].Percentage != 0 {
		t.Errorf("zero total must give 0%%, got %v", resp.Stats[0].Percentage)
	}
}

func TestGetSentimentStats_RepoError(t *testing.T) {
	repo := newStubRepo()
	repo.statsErr = errors.New("aggregation failed")
	svc := NewStatsService(repo)

	if _, err := svc.GetSentimentStats(context.Background()); err == nil {
		t.Error("expected repository error to surface")
	}
}

func TestGetFrequentIdeas_DefaultLimit(t *testing.T) {
	repo := newStubRepo()
	svc := NewStatsService(repo)

	if _, err := svc.GetFrequentIdeas(context.Background(), 0); err != nil {
		t.Fatalf("GetFrequentIdeas error: %v", err)
	}
	if repo.lastLimit != 20 {
		t.Errorf("default limit = %d, want 20", repo.lastLimit)
	}

	if _, err := svc.GetFrequentIdeas(context.Background(), 7); err != nil {
		t.Fatalf("GetFrequentIdeas error: %v", err)
	}
	if repo.lastLimit != 7 {
		t.Errorf("explicit limit = %d, want 7", repo.lastLimit)
	}
}

func TestGetFrequentIdeas_PercentagesOverReturnedSet(t *testing.T) {
	repo := newStubRepo()
	repo.ideas = []model.IdeaFrequency{
		{Idea: "parking", Frequency: 6},
		{Idea: "food quality", Frequency: 2},
	}
	repo.distinct = 40
	svc := NewStatsService(repo)

	resp, err := svc.GetFrequentIdeas(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetFrequentIdeas error: %v", err)
	}

	if resp.TotalIdeas != 40 {
		t.Errorf("TotalIdeas = %d, want 40", resp.TotalIdeas)
	}
	if resp.Ideas[0].Percentage != 75 || resp.Ideas[1].Percentage != 25 {
		t.Errorf("unexpected percentages: %+v", resp.Ideas)
	}
}

func TestGetFrequentIdeas_EmptyCorpus(t *testing.T) {
	svc := NewStatsService(newStubRepo())

	resp, err := svc.GetFrequentIdeas(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetFrequentIdeas error: %v", err)
	}
	if len(resp.Ideas) != 0 || resp.TotalIdeas != 0 {
		t.Errorf("expected empty response, got %+v", resp)
	}
	if resp.Ideas == nil {
		t.Error("empty corpus must serialize ideas as [], not null")
	}
}
