// Package chunker splits large texts into translatable chunks on sentence
// boundaries. Sentences are packed greedily up to a soft character cap; a
// single sentence longer than the cap stays whole unless hard splitting is
// requested.
//
// Sentence detection is a best-effort heuristic. It treats '.', '!' and '?'
// followed by whitespace as a sentence end and suppresses the split after
// dotted abbreviations ("e.g.", "U.S.") and short titles ("Mr.", "Dr."). It
// does not know about scripts that end sentences with other punctuation; such
// text is packed as one long sentence.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxChars is the soft cap on chunk length in code points.
	DefaultMaxChars = 1500
)

// Options controls Chunk.
type Options struct {
	// MaxChars is the soft cap. Values ≤ 0 use DefaultMaxChars.
	MaxChars int
	// HardSplit re-splits chunks that still exceed MaxChars after packing
	// (a single overlong sentence) at paragraph, sentence or word
	// boundaries, falling back to a hard cut.
	HardSplit bool
	// OnPack, when set, is called after each sentence is packed with the
	// number of code points accounted for so far.
	OnPack func(consumed int)
}

// Chunk splits text into sentences and packs them into chunks.
// Chunks are returned in original order and never overlap.
func Chunk(text string, opts Options) []string {
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	chunks := Pack(SplitSentences(text), maxChars, opts.OnPack)
	if !opts.HardSplit {
		return chunks
	}

	var out []string
	for _, c := range chunks {
		if utf8.RuneCountInString(c) <= maxChars {
			out = append(out, c)
			continue
		}
		out = append(out, splitOversized(c, maxChars)...)
	}
	return out
}

// SplitSentences breaks text after every sentence terminator that is followed
// by whitespace. The single whitespace rune at each split point is consumed;
// any further whitespace stays with the following sentence. Empty pieces are
// dropped.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 1; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) || !isTerminator(runes[i-1]) {
			continue
		}
		if isAbbreviation(runes, i) {
			continue
		}
		if i > start {
			sentences = append(sentences, string(runes[start:i]))
		}
		start = i + 1
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

// Pack greedily appends sentences to the running chunk, joined by a single
// space. A new chunk is started when the next sentence would push the running
// chunk past maxChars, but only once the running chunk is non-empty, so a
// sentence longer than maxChars becomes a chunk of its own.
func Pack(sentences []string, maxChars int, onPack func(consumed int)) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0
	flushedLen := 0 // code points in chunks already flushed, including joins

	for _, s := range sentences {
		sLen := utf8.RuneCountInString(s)

		if currentLen > 0 && currentLen+sLen > maxChars {
			chunks = append(chunks, current.String())
			if flushedLen > 0 {
				flushedLen++
			}
			flushedLen += currentLen
			current.Reset()
			currentLen = 0
		}

		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(s)
		currentLen += sLen

		if onPack != nil {
			onPack(flushedLen + currentLen)
		}
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func isTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isAbbreviation reports whether the whitespace at runes[i] follows an
// abbreviation rather than a sentence end: "x.y." (dotted abbreviations and
// initials) or "Ab." (short titles such as "Mr." or "Dr.").
func isAbbreviation(runes []rune, i int) bool {
	if i >= 4 && isWordRune(runes[i-4]) && runes[i-3] == '.' && isWordRune(runes[i-2]) {
		return true
	}
	if i >= 3 && unicode.IsUpper(runes[i-3]) && unicode.IsLower(runes[i-2]) && runes[i-1] == '.' {
		return true
	}
	return false
}

// splitOversized cuts text into pieces of at most maxChars code points.
func splitOversized(text string, maxChars int) []string {
	var pieces []string
	remaining := text

	for utf8.RuneCountInString(remaining) > maxChars {
		split := findSplit(remaining, maxChars)
		piece := strings.TrimSpace(remaining[:split])
		if piece != "" {
			pieces = append(pieces, piece)
		}
		remaining = strings.TrimSpace(remaining[split:])
	}

	if remaining != "" {
		pieces = append(pieces, remaining)
	}
	return pieces
}

// findSplit returns the byte index within text at which to split, aiming for
// at most maxChars runes. Splits are attempted (in order of preference) at:
//  1. Paragraph boundaries (\n\n or \r\n\r\n)
//  2. Sentence-ending punctuation followed by whitespace
//  3. Whitespace (word boundary)
//  4. Hard cut at maxChars
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}

	candidate := runes[:maxChars]
	prefix := string(candidate)

	if idx := strings.LastIndex(prefix, "\n\n"); idx > 0 {
		return idx + 2
	}
	if idx := strings.LastIndex(prefix, "\r\n\r\n"); idx > 0 {
		return idx + 4
	}

	for i := len(candidate) - 2; i > 0; i-- {
		if isTerminator(candidate[i]) && unicode.IsSpace(candidate[i+1]) {
			return len(string(candidate[:i+1]))
		}
	}

	for i := len(candidate) - 1; i > 0; i-- {
		if unicode.IsSpace(candidate[i]) {
			return len(string(candidate[:i]))
		}
	}

	return len(prefix)
}
