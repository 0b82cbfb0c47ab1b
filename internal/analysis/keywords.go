package analysis

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"insightapi/internal/oracle"
)

const (
	minKeywordTokenLen  = 2
	maxPhraseCandidates = 24
	mmrLambda           = 0.7
)

// IdeaExtractor pulls key ideas out of a single answer. Two strategies run
// in order, first non-empty result wins: embedding-scored keyphrases with
// diversity re-ranking, then a plain frequency count over stemmed content
// tokens. The frequency path never touches a model, so extraction stays
// available when the embedder is down.
type IdeaExtractor struct {
	embedder oracle.Embedder
	logger   *zap.Logger
}

func NewIdeaExtractor(embedder oracle.Embedder, logger *zap.Logger) *IdeaExtractor {
	return &IdeaExtractor{embedder: embedder, logger: logger}
}

// Extract returns up to topK ideas for the answer. The question text only
// feeds the stop-word set; its vocabulary is never returned as an idea.
func (e *IdeaExtractor) Extract(ctx context.Context, answer, questionText string, topK int) []string {
	stopwords := BuildStopwords(questionText)

	ideas, err := e.keyphrases(ctx, answer, stopwords, topK)
	if err != nil {
		e.logger.Debug("keyphrase extraction unavailable, falling back to frequency",
			zap.Error(err))
	}
	if len(ideas) > 0 {
		return ideas
	}
	return frequencyKeywords(answer, stopwords, topK)
}

// keyphrases scores candidate 1-3-grams by cosine similarity to the whole
// answer's embedding, then re-ranks with maximal marginal relevance so the
// returned phrases cover distinct aspects rather than restating one.
func (e *IdeaExtractor) keyphrases(ctx context.Context, answer string, stopwords Stopwords, topK int) ([]string, error) {
	candidates := phraseCandidates(answer, stopwords)
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > maxPhraseCandidates {
		candidates = candidates[:maxPhraseCandidates]
	}

	docVec, err := e.embedder.Embed(ctx, answer)
	if err != nil {
		return nil, err
	}
	vecs := make([][]float64, len(candidates))
	for i, cand := range candidates {
		vec, err := e.embedder.Embed(ctx, cand)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}

	relevance := make([]float64, len(candidates))
	for i, vec := range vecs {
		relevance[i] = cosineSimilarity(docVec, vec)
	}

	picked := mmrSelect(vecs, relevance, topK)
	ideas := make([]string, len(picked))
	for i, idx := range picked {
		ideas[i] = candidates[idx]
	}
	return ideas, nil
}

// MultiwordPhrase returns the 2-4-gram candidate most similar to the whole
// text, or "" when no multi-word candidate exists.
func (e *IdeaExtractor) MultiwordPhrase(ctx context.Context, text, questionText string) (string, error) {
	stopwords := BuildStopwords(questionText)

	var candidates []string
	for _, cand := range phraseCandidates(text, stopwords) {
		if n := len(strings.Fields(cand)); n >= 2 && n <= 4 {
			candidates = append(candidates, cand)
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}
	if len(candidates) > maxPhraseCandidates {
		candidates = candidates[:maxPhraseCandidates]
	}

	docVec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return "", err
	}
	best, bestScore := "", -1.0
	for _, cand := range candidates {
		vec, err := e.embedder.Embed(ctx, cand)
		if err != nil {
			return "", err
		}
		if score := cosineSimilarity(docVec, vec); score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best, nil
}

// mmrSelect greedily picks k items maximizing relevance while penalizing
// similarity to already-picked items.
func mmrSelect(vecs [][]float64, relevance []float64, k int) []int {
	n := len(vecs)
	if k > n {
		k = n
	}
	picked := make([]int, 0, k)
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	for len(picked) < k && len(remaining) > 0 {
		bestPos, bestScore := -1, -1.0
		for pos, idx := range remaining {
			maxSim := 0.0
			for _, p := range picked {
				if sim := cosineSimilarity(vecs[idx], vecs[p]); sim > maxSim {
					maxSim = sim
				}
			}
			score := mmrLambda*relevance[idx] - (1-mmrLambda)*maxSim
			if score > bestScore {
				bestScore = score
				bestPos = pos
			}
		}
		picked = append(picked, remaining[bestPos])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}
	return picked
}

// phraseCandidates builds 1-4-gram candidates from stopword-free token
// runs, ordered by frequency then first appearance.
func phraseCandidates(text string, stopwords Stopwords) []string {
	runs := contentRuns(text, stopwords)

	counts := make(map[string]int)
	first := make(map[string]int)
	pos := 0
	for _, run := range runs {
		for size := 1; size <= 4; size++ {
			for i := 0; i+size <= len(run); i++ {
				phrase := strings.Join(run[i:i+size], " ")
				if counts[phrase] == 0 {
					first[phrase] = pos
				}
				counts[phrase]++
				pos++
			}
		}
	}

	phrases := make([]string, 0, len(counts))
	for p := range counts {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}
		return first[phrases[i]] < first[phrases[j]]
	})
	return phrases
}

// contentRuns splits text into maximal runs of content tokens, breaking on
// stopwords and short tokens.
func contentRuns(text string, stopwords Stopwords) [][]string {
	var runs [][]string
	var current []string
	for _, token := range tokenizeWords(text) {
		if len(token) < minKeywordTokenLen || stopwords.Contains(token) {
			if len(current) > 0 {
				runs = append(runs, current)
				current = nil
			}
			continue
		}
		current = append(current, token)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

// frequencyKeywords counts stemmed content tokens longer than three runes
// and returns the most frequent surface forms.
func frequencyKeywords(text string, stopwords Stopwords, topK int) []string {
	counts := make(map[string]int)
	surface := make(map[string]string)
	first := make(map[string]int)
	for pos, token := range tokenizeWords(text) {
		if len(token) <= 3 || stopwords.Contains(token) {
			continue
		}
		stem := stemToken(token)
		if counts[stem] == 0 {
			surface[stem] = token
			first[stem] = pos
		}
		counts[stem]++
	}

	stems := make([]string, 0, len(counts))
	for s := range counts {
		stems = append(stems, s)
	}
	sort.Slice(stems, func(i, j int) bool {
		if counts[stems[i]] != counts[stems[j]] {
			return counts[stems[i]] > counts[stems[j]]
		}
		return first[stems[i]] < first[stems[j]]
	})

	if topK > 0 && len(stems) > topK {
		stems = stems[:topK]
	}
	ideas := make([]string, len(stems))
	for i, s := range stems {
		ideas[i] = surface[s]
	}
	return ideas
}
