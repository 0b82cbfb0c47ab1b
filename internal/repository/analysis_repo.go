package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insightapi/internal/model"
)

// AnalysisRepo is the persistence gateway for analysis records. Writes are
// idempotent upserts keyed by question id; statistics are aggregation
// queries over the stored corpus, never separately maintained counters.
type AnalysisRepo interface {
	Upsert(ctx context.Context, record *model.AnalysisRecord) error
	GetByQuestionID(ctx context.Context, questionID string) (*model.AnalysisRecord, error)
	SentimentCounts(ctx context.Context) ([]model.SentimentStat, error)
	FrequentIdeas(ctx context.Context, limit int) ([]model.IdeaFrequency, error)
	CountDistinctIdeas(ctx context.Context) (int, error)
}

type analysisRepo struct {
	collection *mongo.Collection
}

// NewAnalysisRepo creates an analysis repository over the given database.
func NewAnalysisRepo(db *mongo.Database) AnalysisRepo {
	return &analysisRepo{collection: db.Collection("analyses")}
}

// EnsureIndexes creates the unique question-id index and the timestamp
// index. Safe to call on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("analyses").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "questionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: 1}},
		},
	})
	return err
}

func (r *analysisRepo) Upsert(ctx context.Context, record *model.AnalysisRecord) error {
	record.Timestamp = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"questionId": record.QuestionID}, record, opts)
	return err
}

func (r *analysisRepo) GetByQuestionID(ctx context.Context, questionID string) (*model.AnalysisRecord, error) {
	var record model.AnalysisRecord
	err := r.collection.FindOne(ctx, bson.M{"questionId": questionID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SentimentCounts groups every stored per-answer label and counts it.
func (r *analysisRepo) SentimentCounts(ctx context.Context) ([]model.SentimentStat, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$answers"}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$answers.sentimentLabel",
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []model.SentimentStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// FrequentIdeas groups the stored aggregated ideas by idea string and
// returns the most frequent, highest first.
func (r *analysisRepo) FrequentIdeas(ctx context.Context, limit int) ([]model.IdeaFrequency, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$aggregatedExtractedIdeas"}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":       "$aggregatedExtractedIdeas",
			"frequency": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "frequency", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ideas []model.IdeaFrequency
	if err := cursor.All(ctx, &ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// CountDistinctIdeas counts distinct idea strings across the corpus.
func (r *analysisRepo) CountDistinctIdeas(ctx context.Context) (int, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$aggregatedExtractedIdeas"}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$aggregatedExtractedIdeas"}}},
		bson.D{{Key: "$count", Value: "total"}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}
