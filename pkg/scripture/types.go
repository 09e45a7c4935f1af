// Package scripture defines the shared types used across all versecue packages.
//
// These types form the lingua franca between the pattern matcher, the book
// resolver, the validator, and downstream display sinks. They are intentionally
// minimal — each package defines its own domain types, but cross-cutting data
// structures live here to avoid circular imports.
package scripture

import (
	"fmt"
	"time"
)

// Reference is a fully resolved, immutable scripture reference.
//
// Book is always one of the 66 canonical book names — never a raw alias or
// abbreviation. Construction paths that cannot guarantee this must go through
// the book resolver first.
type Reference struct {
	// Book is the canonical book name (e.g., "1 Corinthians").
	Book string `json:"book"`

	// Chapter is the chapter number, ≥ 1.
	Chapter int `json:"chapter"`

	// VerseStart is the first (or only) verse, ≥ 1.
	VerseStart int `json:"verse_start"`

	// VerseEnd is the last verse of a range. Zero when the reference is a
	// single verse. When non-zero it is ≥ VerseStart.
	VerseEnd int `json:"verse_end,omitempty"`
}

// Display returns the human-readable form of the reference, e.g. "John 3:16"
// or "Romans 8:28-30". This string is also the deduplication key.
func (r Reference) Display() string {
	if r.VerseEnd > 0 && r.VerseEnd != r.VerseStart {
		return fmt.Sprintf("%s %d:%d-%d", r.Book, r.Chapter, r.VerseStart, r.VerseEnd)
	}
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.VerseStart)
}

// IsRange reports whether the reference spans more than one verse.
func (r Reference) IsRange() bool {
	return r.VerseEnd > 0 && r.VerseEnd != r.VerseStart
}

// Detection is a single accepted scripture detection emitted by the engine.
// It is created once per accepted candidate and never mutated afterwards.
type Detection struct {
	// Reference is the validated scripture reference.
	Reference Reference `json:"reference"`

	// RawMatch is the exact transcript substring the pattern matched, trimmed.
	RawMatch string `json:"raw_match"`

	// Pattern is the pattern type that produced the detection.
	Pattern PatternType `json:"pattern"`

	// Confidence is the pattern-type confidence weight in [0, 1].
	Confidence float64 `json:"confidence"`

	// Timestamp marks when the detection was emitted.
	Timestamp time.Time `json:"timestamp"`
}

// PatternType classifies the surface syntax a detected reference was spoken
// or written in. The set is closed; each variant carries a fixed confidence
// weight reflecting how unambiguous that syntax is in practice.
type PatternType string

const (
	// PatternStandard matches "Book C:V" or "Book C:V-V".
	PatternStandard PatternType = "standard"

	// PatternVerbal matches "Book chapter C verse V" with both keywords.
	PatternVerbal PatternType = "verbal"

	// PatternVerbalShort matches "Book C verse V" without the chapter keyword.
	PatternVerbalShort PatternType = "verbalShort"

	// PatternSpoken matches "Book CVV" concatenated digit runs or
	// "Book C V" space-separated digits, no range.
	PatternSpoken PatternType = "spoken"

	// PatternSpokenRange matches the spoken forms followed by "to V".
	PatternSpokenRange PatternType = "spokenRange"

	// PatternSpokenWords matches chapter/verse expressed as number words,
	// including compounds ("twenty one").
	PatternSpokenWords PatternType = "spokenWords"

	// PatternChapterOnly matches a bare "Book C" with no verse; verse 1 is
	// implied.
	PatternChapterOnly PatternType = "chapterOnly"
)

// confidenceByPattern is the fixed confidence weight per pattern type.
// Ordered from most to least syntactically explicit.
var confidenceByPattern = map[PatternType]float64{
	PatternStandard:    0.95,
	PatternVerbal:      0.90,
	PatternVerbalShort: 0.88,
	PatternSpokenWords: 0.87,
	PatternSpokenRange: 0.86,
	PatternSpoken:      0.85,
	PatternChapterOnly: 0.80,
}

// Confidence returns the fixed confidence weight for the pattern type.
// Unknown pattern types return 0.
func (p PatternType) Confidence() float64 {
	return confidenceByPattern[p]
}

// IsValid reports whether p is a recognised pattern type.
func (p PatternType) IsValid() bool {
	_, ok := confidenceByPattern[p]
	return ok
}
