// Package validator checks that a translation result is in the expected target language.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

var (
	ErrEmpty = errors.New("translation is empty")
	// ErrWrongLanguage matches every *MismatchError.
	ErrWrongLanguage = errors.New("translation is not in the target language")
)

type MismatchError struct {
	Expected string
	Detected string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s but detected %s", e.Expected, e.Detected)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrWrongLanguage
}

// Detector reports the ISO 639-1 code of a text.
type Detector interface {
	DetectISO(text string) (string, bool)
}

// Validator checks that a translation result is written in the expected target language.
type Validator struct {
	det Detector
}

func New(det Detector) *Validator {
	return &Validator{det: det}
}

// Verify returns nil when translatedText appears to be written in targetLang.
//
// Short texts and texts whose language cannot be determined pass. Region and
// script subtags of targetLang are ignored, so "pt-BR" accepts Portuguese.
func (v *Validator) Verify(translatedText, targetLang string) error {
	if targetLang == "" {
		return nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return ErrEmpty
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return nil
	}

	if !sameLanguage(detected, targetLang) {
		return &MismatchError{Expected: targetLang, Detected: detected}
	}
	return nil
}

func sameLanguage(detected, target string) bool {
	if strings.EqualFold(detected, target) {
		return true
	}
	dt, err := language.Parse(detected)
	if err != nil {
		return false
	}
	tt, err := language.Parse(target)
	if err != nil {
		return false
	}
	db, _ := dt.Base()
	tb, _ := tt.Base()
	return db == tb
}
