package config

import (
	"errors"
	"os"
)

// AIModels defines which models back each oracle
type AIModels struct {
	// Embedding turns text into unit vectors for clustering
	Embedding string `json:"embedding"`

	// Rewrite paraphrases cluster representatives into clean labels
	Rewrite string `json:"rewrite"`

	// Sentiment classifies answers into a 3-class distribution
	Sentiment string `json:"sentiment"`

	// Translation maps non-English answers to English before scoring
	Translation string `json:"translation"`
}

// AIConfig holds all model-oracle configuration
type AIConfig struct {
	APIKey  string   `json:"-"` // Never serialize
	BaseURL string   `json:"baseUrl"`
	Models  AIModels `json:"models"`

	// Clustering
	ClusterDistanceThreshold float64 `json:"clusterDistanceThreshold"`
	ClusterMinWeight         int     `json:"clusterMinWeight"`
	ClusterMaxCount          int     `json:"clusterMaxCount"`
	MaxClusterExamples       int     `json:"maxClusterExamples"`

	// Paraphrase validation bounds
	ParaphraseMinWords     int `json:"paraphraseMinWords"`
	ParaphraseMaxWords     int `json:"paraphraseMaxWords"`
	ParaphraseMinNewTokens int `json:"paraphraseMinNewTokens"`
	ParaphraseMaxNewTokens int `json:"paraphraseMaxNewTokens"`

	// Translation behavior
	TranslationEnabled bool   `json:"translationEnabled"`
	TranslationTask    string `json:"translationTask"`
	DetectLanguage     bool   `json:"detectLanguage"`
}

// DefaultAIConfig returns the AI configuration from the environment
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Models: AIModels{
			Embedding:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Rewrite:     getEnv("REWRITE_MODEL", "gpt-4o-mini"),
			Sentiment:   getEnv("SENTIMENT_MODEL", "gpt-4o-mini"),
			Translation: getEnv("TRANSLATION_MODEL", "gpt-4o-mini"),
		},
		ClusterDistanceThreshold: getEnvFloat("CLUSTER_DISTANCE_THRESHOLD", 0.5),
		ClusterMinWeight:         getEnvInt("CLUSTER_MIN_WEIGHT", 3),
		ClusterMaxCount:          getEnvInt("CLUSTER_MAX_COUNT", 6),
		MaxClusterExamples:       getEnvInt("MAX_CLUSTER_EXAMPLES", 8),
		ParaphraseMinWords:       getEnvInt("PARAPHRASE_MIN_WORDS", 4),
		ParaphraseMaxWords:       getEnvInt("PARAPHRASE_MAX_WORDS", 12),
		ParaphraseMinNewTokens:   getEnvInt("PARAPHRASE_MIN_NEW_TOKENS", 4),
		ParaphraseMaxNewTokens:   getEnvInt("PARAPHRASE_MAX_NEW_TOKENS", 18),
		TranslationEnabled:       getEnvBool("TRANSLATION_ENABLED", true),
		TranslationTask:          getEnv("TRANSLATION_TASK", "translate-to-english"),
		DetectLanguage:           getEnvBool("DETECT_LANGUAGE", true),
	}
}

// Validate reports configuration states that must prevent startup
func (c *AIConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	if c.TranslationEnabled && c.Models.Translation == "" {
		return errors.New("translation is enabled but TRANSLATION_MODEL is not set")
	}
	return nil
}
