package service

import (
	"context"

	"go.uber.org/zap"

	"insightapi/internal/analysis"
	"insightapi/internal/cache"
	"insightapi/internal/model"
	"insightapi/internal/repository"
)

const (
	perAnswerIdeaCount = 5
	themeIdeaCount     = 5
)

// AnalyzeService orchestrates one analysis request: per-answer sentiment
// and idea extraction, cross-answer themes, cluster summaries, persistence.
// All pipeline errors are converted to a failure response at this boundary;
// a bad request never crashes the listener.
type AnalyzeService struct {
	summarizer *analysis.ClusterSummarizer
	scorer     *analysis.SentimentScorer
	extractor  *analysis.IdeaExtractor
	themes     *analysis.ThemeSummarizer
	repo       repository.AnalysisRepo
	cache      cache.AnalysisCache
	logger     *zap.Logger
}

// NewAnalyzeService creates the request orchestrator.
func NewAnalyzeService(
	summarizer *analysis.ClusterSummarizer,
	scorer *analysis.SentimentScorer,
	extractor *analysis.IdeaExtractor,
	themes *analysis.ThemeSummarizer,
	repo repository.AnalysisRepo,
	analysisCache cache.AnalysisCache,
	logger *zap.Logger,
) *AnalyzeService {
	return &AnalyzeService{
		summarizer: summarizer,
		scorer:     scorer,
		extractor:  extractor,
		themes:     themes,
		repo:       repo,
		cache:      analysisCache,
		logger:     logger,
	}
}

// AnalyzeQuestion runs the full pipeline for one question and its answers.
func (s *AnalyzeService) AnalyzeQuestion(ctx context.Context, req *model.AnalyzeRequest) *model.AnalyzeResponse {
	resp, err := s.analyze(ctx, req)
	if err != nil {
		s.logger.Error("analysis failed",
			zap.String("questionId", req.QuestionID),
			zap.Error(err))
		return &model.AnalyzeResponse{
			QuestionID:   req.QuestionID,
			Success:      false,
			ErrorMessage: err.Error(),
		}
	}
	return resp
}

func (s *AnalyzeService) analyze(ctx context.Context, req *model.AnalyzeRequest) (*model.AnalyzeResponse, error) {
	answers := make([]model.AnswerResult, 0, len(req.AnswerText))
	scores := make([]float64, 0, len(req.AnswerText))

	for idx, text := range req.AnswerText {
		score, label, err := s.scorer.Score(ctx, text)
		if err != nil {
			return nil, err
		}
		ideas := s.extractor.Extract(ctx, text, req.QuestionText, perAnswerIdeaCount)

		scores = append(scores, score)
		answers = append(answers, model.AnswerResult{
			Index:          idx,
			AnswerText:     text,
			SentimentScore: score,
			SentimentLabel: label,
			ExtractedIdeas: ideas,
		})
	}

	aggregateScore, aggregateLabel := analysis.AggregateSentiment(scores)

	aggregatedIdeas, err := s.themes.TopIdeas(ctx, req.AnswerText, req.QuestionText, themeIdeaCount)
	if err != nil {
		return nil, err
	}

	clusterSummaries, err := s.summarizer.Summarize(ctx, req.AnswerText)
	if err != nil {
		return nil, err
	}

	record := &model.AnalysisRecord{
		QuestionID:               req.QuestionID,
		QuestionText:             req.QuestionText,
		Answers:                  answers,
		AggregateSentimentScore:  aggregateScore,
		AggregateSentimentLabel:  aggregateLabel,
		AggregatedExtractedIdeas: aggregatedIdeas,
		ClusterSummaries:         clusterSummaries,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, record); err != nil {
		s.logger.Warn("failed to cache analysis record",
			zap.String("questionId", req.QuestionID),
			zap.Error(err))
	}

	return &model.AnalyzeResponse{
		QuestionID:               req.QuestionID,
		Answers:                  answers,
		AggregateSentimentScore:  aggregateScore,
		AggregateSentimentLabel:  aggregateLabel,
		AggregatedExtractedIdeas: aggregatedIdeas,
		ClusterSummaries:         clusterSummaries,
		Success:                  true,
	}, nil
}

// GetAnalysis fetches a stored record, serving from cache when possible.
func (s *AnalyzeService) GetAnalysis(ctx context.Context, questionID string) (*model.AnalysisRecord, error) {
	record, err := s.cache.Get(ctx, questionID)
	if err != nil {
		s.logger.Warn("analysis cache read failed",
			zap.String("questionId", questionID),
			zap.Error(err))
	}
	if record != nil {
		return record, nil
	}

	record, err = s.repo.GetByQuestionID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		if err := s.cache.Set(ctx, record); err != nil {
			s.logger.Warn("failed to cache analysis record",
				zap.String("questionId", questionID),
				zap.Error(err))
		}
	}
	return record, nil
}
