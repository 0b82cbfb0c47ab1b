package analysis

import (
	"context"
	"fmt"

	"insightapi/internal/model"
	"insightapi/internal/oracle"
)

// SentimentScorer classifies one answer into a 3-class distribution and
// reduces it to a scalar score plus a label.
type SentimentScorer struct {
	classifier oracle.Classifier
	translate  *TranslatePipeline
}

func NewSentimentScorer(classifier oracle.Classifier, translate *TranslatePipeline) *SentimentScorer {
	return &SentimentScorer{classifier: classifier, translate: translate}
}

// Score returns the positive score in [0,1] and the sentiment label.
// score = P(positive) + 0.5*P(neutral). The label is the argmax class; an
// exact probability tie resolves to NEUTRAL rather than depending on map
// iteration order.
func (s *SentimentScorer) Score(ctx context.Context, text string) (float64, string, error) {
	if CleanText(text) == "" {
		return 0.5, model.SentimentNeutral, nil
	}

	input, err := s.translate.Apply(ctx, text)
	if err != nil {
		return 0, "", err
	}

	probs, err := s.classifier.Classify(ctx, input)
	if err != nil {
		return 0, "", fmt.Errorf("sentiment classification failed: %w", err)
	}

	pos := probs["positive"]
	neu := probs["neutral"]
	neg := probs["negative"]
	total := pos + neu + neg
	if total <= 0 {
		return 0.5, model.SentimentNeutral, nil
	}
	pos, neu, neg = pos/total, neu/total, neg/total

	score := pos + 0.5*neu
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return score, argmaxLabel(pos, neu, neg), nil
}

func argmaxLabel(pos, neu, neg float64) string {
	max := pos
	if neu > max {
		max = neu
	}
	if neg > max {
		max = neg
	}

	ties := 0
	label := model.SentimentNeutral
	if pos == max {
		ties++
		label = model.SentimentPositive
	}
	if neu == max {
		ties++
		label = model.SentimentNeutral
	}
	if neg == max {
		ties++
		label = model.SentimentNegative
	}
	if ties > 1 {
		return model.SentimentNeutral
	}
	return label
}

// AggregateSentiment reduces per-answer scores to a question-level score
// and label. No answers means a neutral 0.5.
func AggregateSentiment(scores []float64) (float64, string) {
	if len(scores) == 0 {
		return 0.5, model.SentimentNeutral
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))

	switch {
	case mean >= 0.6:
		return mean, model.SentimentPositive
	case mean <= 0.4:
		return mean, model.SentimentNegative
	default:
		return mean, model.SentimentNeutral
	}
}
