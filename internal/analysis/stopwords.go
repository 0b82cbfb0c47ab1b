package analysis

import (
	"strings"

	"github.com/kljensen/snowball"
)

// baseStopwords are common English function words.
var baseStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can",
	"can't", "cannot", "could", "couldn't", "did", "didn't", "do", "does",
	"doesn't", "doing", "don't", "down", "during", "each", "few", "for",
	"from", "further", "had", "hadn't", "has", "hasn't", "have", "haven't",
	"having", "he", "her", "here", "hers", "herself", "him", "himself",
	"his", "how", "i", "i'd", "i'll", "i'm", "i've", "if", "in", "into",
	"is", "isn't", "it", "it's", "its", "itself", "let's", "me", "more",
	"most", "mustn't", "my", "myself", "no", "nor", "not", "of", "off",
	"on", "once", "only", "or", "other", "ought", "our", "ours",
	"ourselves", "out", "over", "own", "same", "shan't", "she", "should",
	"shouldn't", "so", "some", "such", "than", "that", "that's", "the",
	"their", "theirs", "them", "themselves", "then", "there", "there's",
	"these", "they", "they'd", "they'll", "they're", "they've", "this",
	"those", "through", "to", "too", "under", "until", "up", "very", "was",
	"wasn't", "we", "we'd", "we'll", "we're", "we've", "were", "weren't",
	"what", "what's", "when", "where", "which", "while", "who", "who's",
	"whom", "why", "will", "with", "won't", "would", "wouldn't", "you",
	"you'd", "you'll", "you're", "you've", "your", "yours", "yourself",
	"yourselves",
}

// domainStopwords are survey vocabulary that carries no thematic content.
var domainStopwords = []string{
	"answer", "answers", "course", "feedback", "form", "lesson", "module",
	"opinion", "question", "questions", "response", "responses", "survey",
	"teacher", "think", "thought", "thoughts",
}

// fillerStopwords are hedges and filler common in free-text answers.
var fillerStopwords = []string{
	"actually", "basically", "bit", "etc", "general", "generally", "good",
	"great", "just", "kind", "like", "lot", "lots", "many", "maybe",
	"much", "nice", "overall", "pretty", "quite", "really", "say",
	"something", "stuff", "thing", "things", "very", "way", "well",
}

// Stopwords is a dynamic stop-word set: the base, domain, and filler lists
// plus the stemmed vocabulary of the question itself, so the question's own
// words are never echoed back as extracted ideas.
type Stopwords map[string]struct{}

// BuildStopwords assembles the stop-word set for one question.
func BuildStopwords(questionText string) Stopwords {
	set := make(Stopwords, 256)
	for _, lists := range [][]string{baseStopwords, domainStopwords, fillerStopwords} {
		for _, w := range lists {
			set[w] = struct{}{}
		}
	}
	for _, token := range tokenizeWords(questionText) {
		set[token] = struct{}{}
		set[stemToken(token)] = struct{}{}
	}
	return set
}

// Contains reports whether the token or its stem is stopped.
func (s Stopwords) Contains(token string) bool {
	if _, ok := s[token]; ok {
		return true
	}
	_, ok := s[stemToken(token)]
	return ok
}

// tokenizeWords lower-cases and splits on non-alphanumeric runes.
func tokenizeWords(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// stemToken reduces a token to its stem. Stemming errors keep the surface
// form, which only makes the filter more permissive.
func stemToken(token string) string {
	stemmed, err := snowball.Stem(token, "english", false)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}
