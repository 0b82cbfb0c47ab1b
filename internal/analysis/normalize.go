package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizedText is one unique answer with the number of original answers
// that collapsed into it.
type NormalizedText struct {
	Text   string
	Weight int
}

// CleanText collapses internal whitespace and trims the ends.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Normalize cleans each answer, drops blanks, and groups identical
// normalized strings. The sum of the returned weights equals the number of
// non-empty input answers. Order follows first appearance.
func Normalize(answers []string) []NormalizedText {
	var texts []NormalizedText
	index := make(map[string]int)
	for _, answer := range answers {
		cleaned := CleanText(answer)
		if cleaned == "" {
			continue
		}
		if i, ok := index[cleaned]; ok {
			texts[i].Weight++
			continue
		}
		index[cleaned] = len(texts)
		texts = append(texts, NormalizedText{Text: cleaned, Weight: 1})
	}
	return texts
}
