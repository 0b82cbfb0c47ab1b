package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insightapi/internal/config"
	"insightapi/internal/model"
	"insightapi/internal/repository"
)

// Seeds a small analyzed corpus so the stats endpoints return something
// meaningful on a fresh database.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	repo := repository.NewAnalysisRepo(db)

	records := []*model.AnalysisRecord{
		{
			QuestionID:   "demo-q1",
			QuestionText: "Which feature do you find the most impressive?",
			Answers: []model.AnswerResult{
				{Index: 0, AnswerText: "The camera takes incredible photos at night", SentimentScore: 0.92, SentimentLabel: model.SentimentPositive, ExtractedIdeas: []string{"camera", "night photos"}},
				{Index: 1, AnswerText: "Battery lasts two full days", SentimentScore: 0.88, SentimentLabel: model.SentimentPositive, ExtractedIdeas: []string{"battery life"}},
				{Index: 2, AnswerText: "The display is fine, nothing special", SentimentScore: 0.52, SentimentLabel: model.SentimentNeutral, ExtractedIdeas: []string{"display"}},
			},
			AggregateSentimentScore:  0.77,
			AggregateSentimentLabel:  model.SentimentPositive,
			AggregatedExtractedIdeas: []string{"camera quality", "battery life", "display"},
			ClusterSummaries: []model.ClusterSummary{
				{Summary: "The camera stands out, especially in low light.", Count: 2},
				{Summary: "Battery life exceeds expectations.", Count: 1},
			},
		},
		{
			QuestionID:   "demo-q2",
			QuestionText: "What is one thing you would improve or change?",
			Answers: []model.AnswerResult{
				{Index: 0, AnswerText: "It heats up when gaming", SentimentScore: 0.18, SentimentLabel: model.SentimentNegative, ExtractedIdeas: []string{"overheating", "gaming"}},
				{Index: 1, AnswerText: "The price is way too high", SentimentScore: 0.12, SentimentLabel: model.SentimentNegative, ExtractedIdeas: []string{"price"}},
				{Index: 2, AnswerText: "Charging could be faster", SentimentScore: 0.35, SentimentLabel: model.SentimentNegative, ExtractedIdeas: []string{"charging speed"}},
			},
			AggregateSentimentScore:  0.22,
			AggregateSentimentLabel:  model.SentimentNegative,
			AggregatedExtractedIdeas: []string{"overheating", "price", "charging speed"},
			ClusterSummaries: []model.ClusterSummary{
				{Summary: "The phone runs hot under load.", Count: 2},
				{Summary: "Pricing feels too aggressive.", Count: 1},
			},
		},
	}

	for _, record := range records {
		if err := repo.Upsert(ctx, record); err != nil {
			log.Fatalf("Failed to upsert %s: %v", record.QuestionID, err)
		}
	}

	fmt.Printf("Seeded %d analysis records into %s\n", len(records), cfg.MongoDB)
}
