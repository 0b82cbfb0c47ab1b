package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"insightapi/internal/oracle"
)

const targetLanguage = "en"

// TranslatePipeline is the shared translate-if-needed step used by both
// the sentiment and the rewrite paths. Detection failures fail open: the
// text is treated as needing translation.
type TranslatePipeline struct {
	enabled    bool
	detect     bool
	detector   oracle.LanguageDetector
	translator oracle.Translator
	logger     *zap.Logger
}

func NewTranslatePipeline(enabled, detect bool, detector oracle.LanguageDetector, translator oracle.Translator, logger *zap.Logger) *TranslatePipeline {
	return &TranslatePipeline{
		enabled:    enabled,
		detect:     detect,
		detector:   detector,
		translator: translator,
		logger:     logger,
	}
}

// Apply returns the text in the target language. A needed translation that
// fails or comes back empty is a hard error for the request.
func (p *TranslatePipeline) Apply(ctx context.Context, text string) (string, error) {
	if !p.enabled || text == "" {
		return text, nil
	}
	if p.detect {
		lang, err := p.detector.Detect(text)
		if err == nil && lang == targetLanguage {
			return text, nil
		}
		if err != nil {
			p.logger.Debug("language detection failed, translating", zap.Error(err))
		}
	}
	translated, err := p.translator.Translate(ctx, text)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	return translated, nil
}
