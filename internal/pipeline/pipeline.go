// Package pipeline implements chunked text translation: quota check, optional
// source language detection, sentence-aligned chunking, paced sequential
// calls to a translation service, and progress reporting.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/valpere/transly/internal"
	"github.com/valpere/transly/internal/chunker"
	"github.com/valpere/transly/internal/quota"
	"github.com/valpere/transly/internal/translator"
)

const (
	DefaultDirectLimit = 1000
	DefaultInterval    = 300 * time.Millisecond
)

type Config struct {
	// DirectLimit is the largest text, in code points, sent in one call.
	DirectLimit int `mapstructure:"direct_limit" json:"direct_limit"`
	// MaxChars is the soft cap on chunk size.
	MaxChars int `mapstructure:"max_chars" json:"max_chars"`
	// HardSplit cuts sentences longer than MaxChars.
	HardSplit bool `mapstructure:"hard_split" json:"hard_split"`
	// Interval is the minimum spacing between the starts of consecutive
	// chunk calls. Zero disables pacing.
	Interval time.Duration `mapstructure:"interval" json:"interval"`
}

func DefaultConfig() Config {
	return Config{
		DirectLimit: DefaultDirectLimit,
		MaxChars:    chunker.DefaultMaxChars,
		Interval:    DefaultInterval,
	}
}

// Detector resolves "auto" to a concrete source language.
type Detector interface {
	DetectISO(text string) (string, bool)
}

// Verifier checks a finished translation. A failed check is reported as a
// warning; the translation is still returned.
type Verifier interface {
	Verify(translatedText, targetLang string) error
}

type Translator struct {
	service  translator.TranslationService
	quota    quota.Source
	detector Detector
	verifier Verifier
	config   Config
	log      zerolog.Logger
}

// New returns a Translator that sends text to service. q may be nil to skip
// the quota check.
func New(service translator.TranslationService, q quota.Source, config Config) *Translator {
	if config.DirectLimit <= 0 {
		config.DirectLimit = DefaultDirectLimit
	}
	if config.MaxChars <= 0 {
		config.MaxChars = chunker.DefaultMaxChars
	}
	if config.Interval < 0 {
		config.Interval = 0
	}
	return &Translator{
		service: service,
		quota:   q,
		config:  config,
		log:     zerolog.Nop(),
	}
}

func (t *Translator) SetDetector(d Detector) {
	t.detector = d
}

func (t *Translator) SetVerifier(v Verifier) {
	t.verifier = v
}

func (t *Translator) SetLogger(log zerolog.Logger) {
	t.log = log
}

// Translate translates text from sourceLang ("auto" to let the engine or the
// detector decide) to targetLang.
//
// Texts up to DirectLimit are sent in one call. Longer texts are split into
// sentence-aligned chunks that are translated one after another, in order,
// and joined with single spaces. The first failing chunk aborts the whole
// operation; no partial result is returned.
//
// onProgress may be nil. Reported values never decrease and stay below 100
// until the translation has succeeded, at which point 100 is reported.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string, onProgress internal.ProgressFunc) (*internal.TranslationResult, error) {
	prog := newProgress(onProgress)
	total := utf8.RuneCountInString(text)

	result := &internal.TranslationResult{
		SourceLang:           sourceLang,
		TargetLang:           targetLang,
		CharactersTranslated: total,
	}

	if strings.TrimSpace(text) == "" {
		prog.done()
		return result, nil
	}

	if err := validateLanguages(sourceLang, targetLang); err != nil {
		return nil, err
	}

	if err := quota.Check(ctx, t.quota, total); err != nil {
		return nil, err
	}

	sourceLang = t.resolveSource(text, sourceLang)
	result.SourceLang = sourceLang

	if total <= t.config.DirectLimit {
		out, err := t.call(ctx, text, sourceLang, targetLang)
		if err != nil {
			return nil, err
		}
		result.TranslatedText = out
		result.Chunks = 1
		t.verify(result)
		prog.done()
		return result, nil
	}

	chunks := chunker.Chunk(text, chunker.Options{
		MaxChars:  t.config.MaxChars,
		HardSplit: t.config.HardSplit,
		OnPack:    func(consumed int) { prog.split(consumed, total) },
	})
	chunks = dropBlank(chunks)

	t.log.Debug().
		Int("characters", total).
		Int("chunks", len(chunks)).
		Str("service", t.service.Name()).
		Msg("Translating in chunks")

	if len(chunks) == 0 {
		prog.done()
		return result, nil
	}

	limiter := t.newLimiter()
	translated := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("translation aborted before chunk %d/%d: %w", i+1, len(chunks), err)
		}

		out, err := t.call(ctx, chunk, sourceLang, targetLang)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		translated = append(translated, out)
		prog.translated(i+1, len(chunks))
	}

	result.TranslatedText = strings.Join(translated, " ")
	result.Chunks = len(chunks)
	t.verify(result)
	prog.done()
	return result, nil
}

// newLimiter returns a token bucket holding one token that refills every
// Interval. Each chunk call takes a token, so the first call goes out
// immediately and each later call starts at least Interval after the
// previous one started. A call slower than Interval is followed without a
// pause. The limiter lives for one Translate call only.
func (t *Translator) newLimiter() *rate.Limiter {
	if t.config.Interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(t.config.Interval), 1)
}

func (t *Translator) call(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	res, err := t.service.Translate(ctx, translator.TranslateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", err
	}

	t.log.Debug().
		Str("service", res.ServiceName).
		Int("characters", utf8.RuneCountInString(text)).
		Dur("latency", res.Latency).
		Msg("Chunk translated")

	return res.TranslatedText, nil
}

func (t *Translator) verify(result *internal.TranslationResult) {
	if t.verifier == nil {
		return
	}
	if err := t.verifier.Verify(result.TranslatedText, result.TargetLang); err != nil {
		t.log.Warn().Err(err).Msg("Translation failed verification")
		result.Warnings = append(result.Warnings, err.Error())
	}
}

func (t *Translator) resolveSource(text, sourceLang string) string {
	if !translator.IsAuto(sourceLang) || t.detector == nil {
		return sourceLang
	}
	detected, ok := t.detector.DetectISO(text)
	if !ok {
		t.log.Debug().Msg("Source language not detected, leaving it to the engine")
		return sourceLang
	}
	t.log.Info().Str("source", detected).Msg("Detected source language")
	return detected
}

func validateLanguages(sourceLang, targetLang string) error {
	if targetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if _, err := language.Parse(targetLang); err != nil {
		return fmt.Errorf("invalid target language %q: %w", targetLang, err)
	}
	if translator.IsAuto(sourceLang) {
		return nil
	}
	if _, err := language.Parse(sourceLang); err != nil {
		return fmt.Errorf("invalid source language %q: %w", sourceLang, err)
	}
	return nil
}

func dropBlank(chunks []string) []string {
	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
