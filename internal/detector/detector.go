// Package detector resolves the source language of a text locally so that a
// long text split into chunks is translated with one consistent source
// language instead of letting the engine guess per chunk.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

const (
	// sampleRunes bounds how much of a text is inspected. Detection cost
	// grows with input length and a few sentences are enough.
	sampleRunes = 2000
)

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector for all languages lingua knows. Building is
// expensive; reuse the instance.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithPreloadedLanguageModels().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	text = sample(text)
	if text == "" {
		return lingua.Unknown, false
	}

	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language in lower
// case, e.g. "en".
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

func sample(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= sampleRunes {
		return text
	}
	return string(runes[:sampleRunes])
}
