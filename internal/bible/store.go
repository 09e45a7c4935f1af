// Package bible provides verse storage backends used to validate detected
// references against the actual structure of the text.
package bible

import (
	"context"
	"errors"

	"github.com/versecue/versecue/pkg/scripture"
)

// ErrUnknownBook is returned when a canonical book name has no entry in the
// store. Callers upstream resolve raw text to canonical names first, so
// hitting this usually means the store and the canon disagree.
var ErrUnknownBook = errors.New("bible: unknown book")

// ErrVerseNotFound is returned by VerseText when the reference points past
// the end of a chapter or at a verse the loaded translation omits.
var ErrVerseNotFound = errors.New("bible: verse not found")

// Store answers structural questions about the text. Implementations must be
// safe for concurrent use.
type Store interface {
	// MaxChapters returns the number of chapters in a canonical book.
	MaxChapters(ctx context.Context, book string) (int, error)

	// VerseCount returns the number of verses in a chapter, or 0 when the
	// store only knows chapter counts and cannot validate at verse level.
	VerseCount(ctx context.Context, book string, chapter int) (int, error)

	// VerseText returns the text of a single verse. For a range reference
	// only the starting verse is fetched.
	VerseText(ctx context.Context, ref scripture.Reference) (string, error)
}
