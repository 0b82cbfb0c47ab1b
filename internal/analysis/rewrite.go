package analysis

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"insightapi/internal/config"
	"insightapi/internal/oracle"
)

var (
	rolePrefixRe    = regexp.MustCompile(`(?i)^(paraphrase|summary|assistant)[:\-]\s*`)
	leadingJunkRe   = regexp.MustCompile(`^["'\-\s]+`)
	trailingJunkRe  = regexp.MustCompile(`["'\s]+$`)
	sentenceBreakRe = regexp.MustCompile(`[.!?]\s`)
	wordRe          = regexp.MustCompile(`[A-Za-z0-9]+`)
	echoPatternRe   = regexp.MustCompile(`(?i)^(.+?)\s+is\s+an?\s+(.+?)[.!?]?$`)
)

// Rewriter paraphrases a cluster's representative sentence into a clean
// label. Rewrite quality is best-effort: a rejected paraphrase falls back
// to the cleaned original, so every cluster always yields a usable label.
type Rewriter struct {
	generator oracle.Generator
	translate *TranslatePipeline
	cfg       *config.AIConfig
	logger    *zap.Logger
}

func NewRewriter(generator oracle.Generator, translate *TranslatePipeline, cfg *config.AIConfig, logger *zap.Logger) *Rewriter {
	return &Rewriter{generator: generator, translate: translate, cfg: cfg, logger: logger}
}

// RewriteOrFallback cleans the sentence, translates it when needed, asks
// the generative oracle for a paraphrase, and validates the result. On
// validation rejection the (possibly translated) cleaned input is returned
// unchanged. Oracle failures other than validation are returned as errors.
func (r *Rewriter) RewriteOrFallback(ctx context.Context, sentence string) (string, error) {
	cleaned := cleanSentence(sentence)
	if cleaned == "" {
		return "", nil
	}

	input, err := r.translate.Apply(ctx, cleaned)
	if err != nil {
		return "", err
	}

	paraphrased, err := r.generator.Generate(ctx, "Paraphrase: "+input, oracle.GenerateParams{
		MinNewTokens: r.cfg.ParaphraseMinNewTokens,
		MaxNewTokens: r.cfg.ParaphraseMaxNewTokens,
	})
	if err != nil {
		return "", err
	}

	paraphrased = normalizeParaphrase(paraphrased)
	if reason := r.checkParaphrase(paraphrased, input); reason != "" {
		r.logger.Debug("paraphrase rejected, using original",
			zap.String("reason", reason),
			zap.String("original", input))
		return input, nil
	}
	return paraphrased, nil
}

// cleanSentence collapses whitespace and capitalizes the first letter.
func cleanSentence(sentence string) string {
	return Capitalize(CleanText(sentence))
}

// normalizeParaphrase strips generation artifacts: role prefixes, leading
// quote/dash clutter, anything past the first sentence. It then ensures
// terminal punctuation and a leading capital.
func normalizeParaphrase(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = rolePrefixRe.ReplaceAllString(text, "")
	text = leadingJunkRe.ReplaceAllString(text, "")
	text = trailingJunkRe.ReplaceAllString(text, "")
	if loc := sentenceBreakRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]+1]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return Capitalize(text)
}

// checkParaphrase returns a rejection reason, or "" when valid.
func (r *Rewriter) checkParaphrase(paraphrased, original string) string {
	if paraphrased == "" {
		return "empty"
	}
	wordCount := len(wordRe.FindAllString(paraphrased, -1))
	if wordCount < r.cfg.ParaphraseMinWords {
		return "too_short"
	}
	if wordCount > r.cfg.ParaphraseMaxWords {
		return "too_long"
	}
	// Punctuation-insensitive: a paraphrase that only adds a period is
	// still an echo of the input.
	if strings.EqualFold(wordsOnly(paraphrased), wordsOnly(original)) {
		return "unchanged"
	}
	if isDegenerateEcho(paraphrased) {
		return "bad_pattern"
	}
	return ""
}

// wordsOnly reduces text to its space-joined word tokens.
func wordsOnly(text string) string {
	return strings.Join(wordRe.FindAllString(text, -1), " ")
}

// isDegenerateEcho catches "X is a X" style output, a known failure mode
// of small paraphrase models.
func isDegenerateEcho(text string) bool {
	m := echoPatternRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
}

// truncateText caps text at maxLen runes with a trailing ellipsis.
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return strings.TrimRight(string(runes[:maxLen-1]), " ") + "..."
}
