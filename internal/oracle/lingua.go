package oracle

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LinguaDetector implements LanguageDetector on top of the lingua
// statistical detector. The detector is safe for concurrent use.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

func NewLinguaDetector() *LinguaDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllSpokenLanguages().
		WithLowAccuracyMode().
		Build()
	return &LinguaDetector{detector: detector}
}

func (d *LinguaDetector) Detect(text string) (string, error) {
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", fmt.Errorf("language detection failed")
	}
	return strings.ToLower(language.IsoCode639_1().String()), nil
}
