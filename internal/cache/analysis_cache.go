package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"insightapi/internal/model"
)

// AnalysisCache is a read-through cache of analysis records keyed by
// question id. A miss returns (nil, nil); callers fall back to Mongo.
type AnalysisCache interface {
	Get(ctx context.Context, questionID string) (*model.AnalysisRecord, error)
	Set(ctx context.Context, record *model.AnalysisRecord) error
}

type analysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalysisCache creates an analysis cache with a 24h TTL.
func NewAnalysisCache(client *redis.Client) AnalysisCache {
	return &analysisCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *analysisCache) key(questionID string) string {
	return fmt.Sprintf("analysis:q:%s", questionID)
}

func (c *analysisCache) Get(ctx context.Context, questionID string) (*model.AnalysisRecord, error) {
	data, err := c.client.Get(ctx, c.key(questionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record model.AnalysisRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *analysisCache) Set(ctx context.Context, record *model.AnalysisRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(record.QuestionID), data, c.ttl).Err()
}
