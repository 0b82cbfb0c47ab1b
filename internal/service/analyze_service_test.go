package service

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"insightapi/internal/analysis"
	"insightapi/internal/config"
	"insightapi/internal/model"
	"insightapi/internal/oracle"
)

// axis returns a unit vector on one of three orthogonal axes.
func axis(i int) []float64 {
	v := make([]float64, 3)
	v[i] = 1
	return v
}

type stubEmbedder struct {
	vectors map[string][]float64
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	h := fnv.New32a()
	h.Write([]byte(text))
	sum := h.Sum32()
	v := []float64{
		float64(sum%997) + 1,
		float64((sum/997)%997) + 1,
		float64((sum/994009)%997) + 1,
	}
	norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	for i := range v {
		v[i] /= norm
	}
	return v, nil
}

type stubGenerator struct {
	response string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, params oracle.GenerateParams) (string, error) {
	return s.response, nil
}

type stubClassifier struct {
	probs map[string]map[string]float64
	err   error
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (map[string]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.probs[text], nil
}

type stubRepo struct {
	records   map[string]*model.AnalysisRecord
	upsertErr error
	stats     []model.SentimentStat
	ideas     []model.IdeaFrequency
	distinct  int
	lastLimit int
	statsErr  error
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[string]*model.AnalysisRecord)}
}

func (s *stubRepo) Upsert(ctx context.Context, record *model.AnalysisRecord) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	record.Timestamp = time.Now().UTC()
	s.records[record.QuestionID] = record
	return nil
}

func (s *stubRepo) GetByQuestionID(ctx context.Context, questionID string) (*model.AnalysisRecord, error) {
	return s.records[questionID], nil
}

func (s *stubRepo) SentimentCounts(ctx context.Context) ([]model.SentimentStat, error) {
	return s.stats, s.statsErr
}

func (s *stubRepo) FrequentIdeas(ctx context.Context, limit int) ([]model.IdeaFrequency, error) {
	s.lastLimit = limit
	return s.ideas, nil
}

func (s *stubRepo) CountDistinctIdeas(ctx context.Context) (int, error) {
	return s.distinct, nil
}

type stubCache struct {
	store  map[string]*model.AnalysisRecord
	getErr error
	setErr error
}

func newStubCache() *stubCache {
	return &stubCache{store: make(map[string]*model.AnalysisRecord)}
}

func (s *stubCache) Get(ctx context.Context, questionID string) (*model.AnalysisRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.store[questionID], nil
}

func (s *stubCache) Set(ctx context.Context, record *model.AnalysisRecord) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.store[record.QuestionID] = record
	return nil
}

func testPipelineConfig() *config.AIConfig {
	return &config.AIConfig{
		ClusterDistanceThreshold: 0.5,
		ClusterMinWeight:         3,
		ClusterMaxCount:          6,
		MaxClusterExamples:       8,
		ParaphraseMinWords:       4,
		ParaphraseMaxWords:       12,
		ParaphraseMinNewTokens:   4,
		ParaphraseMaxNewTokens:   18,
	}
}

func newTestAnalyzeService(embedder *stubEmbedder, classifier *stubClassifier, repo *stubRepo, analysisCache *stubCache) *AnalyzeService {
	logger := zap.NewNop()
	cfg := testPipelineConfig()
	generator := &stubGenerator{}
	translate := analysis.NewTranslatePipeline(false, false, nil, nil, logger)
	rewriter := analysis.NewRewriter(generator, translate, cfg, logger)
	summarizer := analysis.NewClusterSummarizer(embedder, rewriter, cfg, logger)
	scorer := analysis.NewSentimentScorer(classifier, translate)
	extractor := analysis.NewIdeaExtractor(embedder, logger)
	themes := analysis.NewThemeSummarizer(embedder, generator, extractor, logger)
	return NewAnalyzeService(summarizer, scorer, extractor, themes, repo, analysisCache, logger)
}

func TestAnalyzeQuestion_FullPipeline(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"loved the food":    axis(0),
		"hated the parking": axis(1),
	}}
	classifier := &stubClassifier{probs: map[string]map[string]float64{
		"loved the food":    {"positive": 0.85, "neutral": 0.1, "negative": 0.05},
		"hated the parking": {"positive": 0.05, "neutral": 0.1, "negative": 0.85},
	}}
	repo := newStubRepo()
	analysisCache := newStubCache()
	svc := newTestAnalyzeService(embedder, classifier, repo, analysisCache)

	resp := svc.AnalyzeQuestion(context.Background(), &model.AnalyzeRequest{
		QuestionID:   "q1",
		QuestionText: "How was the event?",
		AnswerText:   []string{"loved the food", "hated the parking"},
	})

	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.ErrorMessage)
	}
	if len(resp.Answers) != 2 {
		t.Fatalf("expected 2 answer results, got %d", len(resp.Answers))
	}
	if resp.Answers[0].SentimentLabel != model.SentimentPositive {
		t.Errorf("answer 0 label = %s, want POSITIVE", resp.Answers[0].SentimentLabel)
	}
	if resp.Answers[1].SentimentLabel != model.SentimentNegative {
		t.Errorf("answer 1 label = %s, want NEGATIVE", resp.Answers[1].SentimentLabel)
	}
	if resp.Answers[0].Index != 0 || resp.Answers[1].Index != 1 {
		t.Error("answer indices must follow request order")
	}

	// One strongly positive and one strongly negative answer average out
	if math.Abs(resp.AggregateSentimentScore-0.5) > 1e-9 {
		t.Errorf("aggregate score = %v, want 0.5", resp.AggregateSentimentScore)
	}
	if resp.AggregateSentimentLabel != model.SentimentNeutral {
		t.Errorf("aggregate label = %s, want NEUTRAL", resp.AggregateSentimentLabel)
	}

	if len(resp.AggregatedExtractedIdeas) == 0 {
		t.Error("expected aggregated ideas")
	}
	if len(resp.ClusterSummaries) == 0 {
		t.Error("expected cluster summaries")
	}

	stored, ok := repo.records["q1"]
	if !ok {
		t.Fatal("record was not upserted")
	}
	if stored.QuestionText != "How was the event?" || len(stored.Answers) != 2 {
		t.Errorf("stored record incomplete: %+v", stored)
	}
	if _, ok := analysisCache.store["q1"]; !ok {
		t.Error("record was not cached")
	}
}

func TestAnalyzeQuestion_ResubmitReplacesRecord(t *testing.T) {
	classifier := &stubClassifier{probs: map[string]map[string]float64{
		"great session":  {"positive": 0.8, "neutral": 0.1, "negative": 0.1},
		"awful schedule": {"positive": 0.1, "neutral": 0.1, "negative": 0.8},
	}}
	repo := newStubRepo()
	svc := newTestAnalyzeService(&stubEmbedder{}, classifier, repo, newStubCache())

	first := svc.AnalyzeQuestion(context.Background(), &model.AnalyzeRequest{
		QuestionID: "q-re",
		AnswerText: []string{"great session"},
	})
	if !first.Success {
		t.Fatalf("first submission failed: %q", first.ErrorMessage)
	}
	firstStamp := repo.records["q-re"].Timestamp

	second := svc.AnalyzeQuestion(context.Background(), &model.AnalyzeRequest{
		QuestionID: "q-re",
		AnswerText: []string{"awful schedule"},
	})
	if !second.Success {
		t.Fatalf("second submission failed: %q", second.ErrorMessage)
	}

	if len(repo.records) != 1 {
		t.Fatalf("re-submission must keep a single record, got %d", len(repo.records))
	}
	stored := repo.records["q-re"]
	if len(stored.Answers) != 1 || stored.Answers[0].AnswerText != "awful schedule" {
		t.Errorf("stored answers not replaced: %+v", stored.Answers)
	}
	if stored.AggregateSentimentLabel != model.SentimentNegative {
		t.Errorf("stored aggregate = %s, want NEGATIVE", stored.AggregateSentimentLabel)
	}
	if stored.Timestamp.Before(firstStamp) || stored.Timestamp.IsZero() {
		t.Errorf("timestamp did not advance: first %v, second %v", firstStamp, stored.Timestamp)
	}
}

func TestAnalyzeQuestion_EmptyAnswerSet(t *testing.T) {
	repo := newStubRepo()
	svc := newTestAnalyzeService(&stubEmbedder{}, &stubClassifier{}, repo, newStubCache())

	resp := svc.AnalyzeQuestion(context.Background(), &model.AnalyzeRequest{
		QuestionID: "q-empty",
	})

	if !resp.Success {
		t.Fatalf("empty answer set must still succeed, got %q", resp.ErrorMessage)
	}
	if resp.AggregateSentimentScore != 0.5 || resp.AggregateSentimentLabel != model.SentimentNeutral {
		t.Errorf("empty aggregate = (%v, %s), want (0.5, NEUTRAL)",
			resp.AggregateSentimentScore, resp.AggregateSentimentLabel)
	}
	if _, ok := repo.records["q-empty"]; !ok {
		t.Error("empty analysis must still be recorded")
	}
}

func TestAnalyzeQuestion_ClassifierFailure(t *testing.T) {
	repo := newStubRepo()
	classifier := &stubClassifier{err: errors.New("model unavailable")}
	svc := newTestAnalyzeService(&stubEmbedder{}, classifier, repo, newStubCache())

	resp := svc.AnalyzeQuestion(context.Background(), &model.AnalyzeRequest{
		QuestionID: "q2",
		AnswerText: []string{"some answer"},
	})

	if resp.Success {
		t.Fatal("expected failure response")
	}
	if resp.ErrorMessage == "" {
		t.Error("failure response must carry an error message")
	}
	if resp.QuestionID != "q2" {
		t.Errorf("failure response questionId = %q", resp.QuestionID)
	}
	if len(repo.records) != 0 {
		t.Error("nothing may be persisted on failure")
	}
}

func TestAnalyzeQuestion_UpsertFailure(t *testing.T) {
	repo := newStubRepo()
	repo.upsertErr = errors.New("mongo down")
	analysisCache := newStubCache()
	classifier := &stubClassifier{probs: map[string]map[string]float64{
		"fine": {"positive": 0.2, "neutral": 0.6, "negative": 0.2},
	}}
	svc := newTestAnalyzeService(&stubEmbedder{}, classifier, repo, analysisCache)

	resp := svc.AnalyzeQuestion(context.Background(), &model.AnalyzeRequest{
		QuestionID: "q3",
		AnswerText: []string{"fine"},
	})

	if resp.Success {
		t.Fatal("expected failure when persistence fails")
	}
	if len(analysisCache.store) != 0 {
		t.Error("cache must not be written when the upsert fails")
	}
}

func TestAnalyzeQuestion_CacheFailureIsNonFatal(t *testing.T) {
	repo := newStubRepo()
	analysisCache := newStubCache()
	analysisCache.setErr = errors.New("redis down")
	classifier := &stubClassifier{probs: map[string]map[string]float64{
		"fine": {"positive": 0.2, "neutral": 0.6, "negative": 0.2},
	}}
	svc := newTestAnalyzeService(&stubEmbedder{}, classifier, repo, analysisCache)

	resp := svc.AnalyzeQuestion(context.Background(), &model.AnalyzeRequest{
		QuestionID: "q4",
		AnswerText: []string{"fine"},
	})

	if !resp.Success {
		t.Fatalf("cache failure must not fail the request: %q", resp.ErrorMessage)
	}
	if _, ok := repo.records["q4"]; !ok {
		t.Error("record must still be upserted")
	}
}

func TestGetAnalysis_CacheHitSkipsRepo(t *testing.T) {
	repo := newStubRepo()
	analysisCache := newStubCache()
	cached := &model.AnalysisRecord{QuestionID: "q5"}
	analysisCache.store["q5"] = cached
	svc := newTestAnalyzeService(&stubEmbedder{}, &stubClassifier{}, repo, analysisCache)

	record, err := svc.GetAnalysis(context.Background(), "q5")
	if err != nil {
		t.Fatalf("GetAnalysis error: %v", err)
	}
	if record != cached {
		t.Error("expected the cached record")
	}
}

func TestGetAnalysis_MissFillsCache(t *testing.T) {
	repo := newStubRepo()
	stored := &model.AnalysisRecord{QuestionID: "q6"}
	repo.records["q6"] = stored
	analysisCache := newStubCache()
	svc := newTestAnalyzeService(&stubEmbedder{}, &stubClassifier{}, repo, analysisCache)

	record, err := svc.GetAnalysis(context.Background(), "q6")
	if err != nil {
		t.Fatalf("GetAnalysis error: %v", err)
	}
	if record != stored {
		t.Error("expected the stored record")
	}
	if _, ok := analysisCache.store["q6"]; !ok {
		t.Error("read-through must fill the cache")
	}
}

func TestGetAnalysis_NotFound(t *testing.T) {
	svc := newTestAnalyzeService(&stubEmbedder{}, &stubClassifier{}, newStubRepo(), newStubCache())

	record, err := svc.GetAnalysis(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetAnalysis error: %v", err)
	}
	if record != nil {
		t.Errorf("expected nil record, got %+v", record)
	}
}
