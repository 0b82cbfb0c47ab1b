package oracle

import "context"

// The analysis core treats every model as a black box behind one of these
// interfaces. Implementations are constructed once at startup and live for
// the process lifetime.

// Embedder maps text to a unit-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// GenerateParams bound the decoding of a generative call. Decoding is
// deterministic: no sampling, fixed beams. MaxNewTokens is a hard cap;
// MinNewTokens is advisory for backends without a length floor, which
// pass it to the model as an instruction.
type GenerateParams struct {
	MinNewTokens int
	MaxNewTokens int
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)
}

// Classifier returns a probability per sentiment class. Probabilities are
// not guaranteed to sum to 1; callers normalize.
type Classifier interface {
	Classify(ctx context.Context, text string) (map[string]float64, error)
}

// Translator maps text to English. An empty result is an error, never an
// empty success.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// LanguageDetector reports an ISO 639-1 language code for the text.
// Callers fail open: a detection error means "assume translation is needed".
type LanguageDetector interface {
	Detect(text string) (string, error)
}
