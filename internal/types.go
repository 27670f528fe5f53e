package internal

type TranslationRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type TranslationResult struct {
	TranslatedText       string `json:"translatedText"`
	SourceLang           string `json:"sourceLang"`
	TargetLang           string `json:"targetLang"`
	CharactersTranslated int    `json:"charactersTranslated"`
	Chunks               int    `json:"chunks"`
	// Warnings are problems noticed after a successful translation.
	Warnings []string `json:"warnings,omitempty"`
}

// ProgressFunc receives completion percentages in the range 0–100.
type ProgressFunc func(percent int)
