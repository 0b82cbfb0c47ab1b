package model

import "time"

// Sentiment labels used across answers and aggregates.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// AnswerResult holds the per-answer analysis outcome
type AnswerResult struct {
	Index          int      `json:"index" bson:"index"`
	AnswerText     string   `json:"answerText" bson:"answerText"`
	SentimentScore float64  `json:"sentimentScore" bson:"sentimentScore"`
	SentimentLabel string   `json:"sentimentLabel" bson:"sentimentLabel"`
	ExtractedIdeas []string `json:"extractedIdeas" bson:"extractedIdeas"`
}

// ClusterSummary is one thematic label over a group of similar answers
type ClusterSummary struct {
	Summary string `json:"summary" bson:"summary"`
	Count   int    `json:"count" bson:"count"`
}

// AnalysisRecord is the persisted analysis of one question, keyed by QuestionID.
// Re-analysis of the same question overwrites the record in place.
type AnalysisRecord struct {
	QuestionID               string           `json:"questionId" bson:"questionId"`
	QuestionText             string           `json:"questionText" bson:"questionText"`
	Answers                  []AnswerResult   `json:"answers" bson:"answers"`
	AggregateSentimentScore  float64          `json:"aggregateSentimentScore" bson:"aggregateSentimentScore"`
	AggregateSentimentLabel  string           `json:"aggregateSentimentLabel" bson:"aggregateSentimentLabel"`
	AggregatedExtractedIdeas []string         `json:"aggregatedExtractedIdeas" bson:"aggregatedExtractedIdeas"`
	ClusterSummaries         []ClusterSummary `json:"clusterSummaries" bson:"clusterSummaries"`
	Timestamp                time.Time        `json:"timestamp" bson:"timestamp"`
}

// SentimentStat is a per-label slice of the stored corpus, computed by
// aggregation on demand (never maintained as a counter)
type SentimentStat struct {
	Sentiment  string  `json:"sentiment" bson:"_id"`
	Count      int     `json:"count" bson:"count"`
	Percentage float64 `json:"percentage" bson:"-"`
}

// IdeaFrequency is one idea with its corpus-wide occurrence count
type IdeaFrequency struct {
	Idea       string  `json:"idea" bson:"_id"`
	Frequency  int     `json:"frequency" bson:"frequency"`
	Percentage float64 `json:"percentage" bson:"-"`
}

// AnalyzeRequest is the AnalyzeQuestion request payload
type AnalyzeRequest struct {
	QuestionID   string   `json:"questionId"`
	QuestionText string   `json:"questionText"`
	AnswerText   []string `json:"answerText"`
}

// AnalyzeResponse is the AnalyzeQuestion response payload
type AnalyzeResponse struct {
	QuestionID               string           `json:"questionId"`
	Answers                  []AnswerResult   `json:"answers"`
	AggregateSentimentScore  float64          `json:"aggregateSentimentScore"`
	AggregateSentimentLabel  string           `json:"aggregateSentimentLabel"`
	AggregatedExtractedIdeas []string         `json:"aggregatedExtractedIdeas"`
	ClusterSummaries         []ClusterSummary `json:"clusterSummaries"`
	Success                  bool             `json:"success"`
	ErrorMessage             string           `json:"errorMessage,omitempty"`
}

// SentimentStatsResponse is the GetSentimentStats response payload
type SentimentStatsResponse struct {
	Stats         []SentimentStat `json:"stats"`
	TotalAnalyzed int             `json:"totalAnalyzed"`
}

// FrequentIdeasResponse is the GetFrequentIdeas response payload
type FrequentIdeasResponse struct {
	Ideas      []IdeaFrequency `json:"ideas"`
	TotalIdeas int             `json:"totalIdeas"`
}
