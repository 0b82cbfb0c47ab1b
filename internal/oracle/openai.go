package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"insightapi/internal/config"
)

// NewOpenAIClient builds the shared API client from config.
func NewOpenAIClient(cfg *config.AIConfig) openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return openai.NewClient(opts...)
}

// OpenAIEmbedder backs the Embedder interface with the embeddings API.
// The API is reentrant but calls are serialized so that concurrent requests
// share one connection's budget predictably.
type OpenAIEmbedder struct {
	client openai.Client
	model  string
	mu     sync.Mutex
}

func NewOpenAIEmbedder(client openai.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding call failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}

	return unitNorm(resp.Data[0].Embedding), nil
}

// unitNorm scales v to unit length. Zero vectors pass through unchanged.
func unitNorm(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// OpenAIGenerator backs the Generator interface with chat completions.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	system string
	mu     sync.Mutex
}

func NewOpenAIGenerator(client openai.Client, model, system string) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model, system: system}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	maxTokens := params.MaxNewTokens
	if maxTokens <= 0 {
		maxTokens = 64
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if g.system != "" {
		messages = append(messages, openai.SystemMessage(g.system))
	}
	if params.MinNewTokens > 0 {
		// The chat API has no minimum-length parameter, so the lower
		// bound rides along as an instruction.
		messages = append(messages, openai.SystemMessage(
			fmt.Sprintf("Reply with at least %d tokens.", params.MinNewTokens)))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       g.model,
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("generation call failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in generation response")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// sentimentProbabilities is the structured classification output.
type sentimentProbabilities struct {
	Positive float64 `json:"positive" jsonschema:"description=Probability that the text is positive"`
	Neutral  float64 `json:"neutral" jsonschema:"description=Probability that the text is neutral"`
	Negative float64 `json:"negative" jsonschema:"description=Probability that the text is negative"`
}

// OpenAIClassifier backs the Classifier interface with a strict-schema
// structured output call.
type OpenAIClassifier struct {
	client openai.Client
	model  string
	schema map[string]any
	mu     sync.Mutex
}

func NewOpenAIClassifier(client openai.Client, model string) (*OpenAIClassifier, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaObj := reflector.Reflect(&sentimentProbabilities{})

	schemaBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sentiment schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sentiment schema: %w", err)
	}

	return &OpenAIClassifier{client: client, model: model, schema: schema}, nil
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You classify the sentiment of survey answers. Return the probability of each class. The three probabilities should sum to 1."),
			openai.UserMessage(text),
		},
		Model:       c.model,
		MaxTokens:   openai.Int(100),
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "sentiment_probabilities",
					Description: openai.String("Three-class sentiment probability distribution"),
					Schema:      c.schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classification call failed: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("no content in classification response")
	}

	var probs sentimentProbabilities
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &probs); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}

	return map[string]float64{
		"positive": probs.Positive,
		"neutral":  probs.Neutral,
		"negative": probs.Negative,
	}, nil
}

// OpenAITranslator backs the Translator interface with chat completions.
type OpenAITranslator struct {
	client openai.Client
	model  string
	system string
	mu     sync.Mutex
}

func NewOpenAITranslator(client openai.Client, model, task string) *OpenAITranslator {
	system := "Translate the user's text to English. Return only the translation, nothing else."
	if task != "" && task != "translate-to-english" {
		system = fmt.Sprintf("Perform the task %q on the user's text. Return only the result, nothing else.", task)
	}
	return &OpenAITranslator{client: client, model: model, system: system}
}

func (t *OpenAITranslator) Translate(ctx context.Context, text string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	completion, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(t.system),
			openai.UserMessage(text),
		},
		Model:       t.model,
		MaxTokens:   openai.Int(512),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("translation call failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in translation response")
	}

	translated := strings.TrimSpace(completion.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("translation returned empty text")
	}
	return translated, nil
}
