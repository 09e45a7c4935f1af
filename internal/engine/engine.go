// Package engine assembles the detection pipeline: scan transcript text for
// candidate references, resolve raw book text to canonical names, validate
// against the verse store, debounce repeats, and emit scored detections.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/versecue/versecue/internal/bible"
	"github.com/versecue/versecue/internal/books"
	"github.com/versecue/versecue/internal/detect"
	"github.com/versecue/versecue/internal/observe"
	"github.com/versecue/versecue/pkg/scripture"
)

// Engine is the detection pipeline. It is safe for concurrent use; the
// scanner and resolver are read-mostly and the caches lock internally.
type Engine struct {
	scanner  *detect.Scanner
	resolver *books.Resolver
	store    bible.Store
	cache    *RecentCache
	metrics  *observe.Metrics
	log      *slog.Logger
	now      func() time.Time
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the engine's logger. Default: [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithMetrics sets the metrics instance.
// Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithDebounce sets the repeat-suppression window.
// Default: [DefaultDebounce].
func WithDebounce(window time.Duration) Option {
	return func(e *Engine) {
		e.cache = NewRecentCache(window)
	}
}

// WithCache replaces the debounce cache entirely. Tests use this to inject a
// cache with a controlled clock.
func WithCache(c *RecentCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// New assembles an engine over the given scanner, resolver, and verse store.
func New(scanner *detect.Scanner, resolver *books.Resolver, store bible.Store, opts ...Option) *Engine {
	e := &Engine{
		scanner:  scanner,
		resolver: resolver,
		store:    store,
		cache:    NewRecentCache(DefaultDebounce),
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	return e
}

// Detect runs one transcript fragment through the pipeline and returns the
// validated detections in text order. Candidates that fail book resolution
// or structural validation are dropped silently (logged at debug level);
// only verse-store failures surface as errors.
func (e *Engine) Detect(ctx context.Context, text string) ([]scripture.Detection, error) {
	ctx, span := observe.StartSpan(ctx, "engine.Detect")
	defer span.End()

	start := e.now()
	defer func() {
		e.metrics.ScanDuration.Record(ctx, time.Since(start).Seconds())
	}()

	matches := e.suppressOverlaps(ctx, e.scanner.Scan(text))

	var detections []scripture.Detection
	for _, m := range matches {
		book, ok := e.resolveBook(m.RawBook)
		if !ok {
			e.reject(ctx, "unknown_book", m)
			continue
		}

		ref := scripture.Reference{
			Book:       book,
			Chapter:    m.Chapter,
			VerseStart: m.VerseStart,
			VerseEnd:   m.VerseEnd,
		}
		ok, err := e.validate(ctx, ref, m)
		if err != nil {
			err = fmt.Errorf("engine: validate %s: %w", ref.Display(), err)
			observe.SpanError(span, err)
			return nil, err
		}
		if !ok {
			continue
		}

		if !e.cache.Observe(ref.Display()) {
			e.metrics.Duplicates.Add(ctx, 1)
			e.log.DebugContext(ctx, "duplicate suppressed", "reference", ref.Display())
			continue
		}

		e.metrics.RecordDetection(ctx, string(m.Type), book)
		detections = append(detections, scripture.Detection{
			Reference:  ref,
			RawMatch:   m.Raw,
			Pattern:    m.Type,
			Confidence: m.Type.Confidence(),
			Timestamp:  e.now(),
		})
	}
	return detections, nil
}

// Teach records an operator-supplied alias correction through the resolver
// and its learned store.
func (e *Engine) Teach(ctx context.Context, alias, canonical string) error {
	if err := e.resolver.AddMapping(ctx, alias, canonical); err != nil {
		return err
	}
	e.metrics.CorrectionsTaught.Add(ctx, 1)
	e.log.InfoContext(ctx, "alias taught", "alias", alias, "canonical", canonical)
	return nil
}

// Suggest proposes a canonical book for unresolvable raw text, for operator
// review before teaching.
func (e *Engine) Suggest(raw string) (books.Suggestion, bool) {
	return e.resolver.SuggestCorrection(raw)
}

// VerseText fetches the text of a detected reference from the verse store.
func (e *Engine) VerseText(ctx context.Context, ref scripture.Reference) (string, error) {
	return e.store.VerseText(ctx, ref)
}

// ClearRecent drops the debounce state, so the next occurrence of any
// reference is emitted again immediately.
func (e *Engine) ClearRecent() {
	e.cache.Clear()
}

// resolveBook resolves raw candidate book text, retrying on progressively
// shorter suffixes. The scanner's book capture can carry narration words the
// filler table does not know ("pastor dave mentioned romans"); those must not
// hide the book name behind them. The full text is tried first so taught
// multi-word aliases keep working.
func (e *Engine) resolveBook(raw string) (string, bool) {
	words := strings.Fields(raw)
	for i := range words {
		if book, ok := e.resolver.Resolve(strings.Join(words[i:], " ")); ok {
			return book, true
		}
	}
	return "", false
}

// validate checks ref against the verse store's structure. A false return
// means the candidate was rejected and counted; an error means the store
// itself failed.
func (e *Engine) validate(ctx context.Context, ref scripture.Reference, m detect.Match) (bool, error) {
	maxCh, err := e.store.MaxChapters(ctx, ref.Book)
	if errors.Is(err, bible.ErrUnknownBook) {
		e.reject(ctx, "unknown_book", m)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if ref.Chapter > maxCh {
		e.reject(ctx, "chapter_out_of_range", m)
		return false, nil
	}

	count, err := e.store.VerseCount(ctx, ref.Book, ref.Chapter)
	if err != nil {
		return false, err
	}
	// A count of zero means the store has no verse text for this chapter
	// and validation stops at chapter level.
	if count > 0 {
		last := ref.VerseStart
		if ref.IsRange() {
			last = ref.VerseEnd
		}
		if last > count {
			e.reject(ctx, "verse_out_of_range", m)
			return false, nil
		}
	}
	return true, nil
}

// suppressOverlaps resolves competing candidates over the same text span:
// the match from the more specific rule wins, and the survivors come back in
// text order.
func (e *Engine) suppressOverlaps(ctx context.Context, matches []detect.Match) []detect.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Priority != matches[j].Priority {
			return matches[i].Priority < matches[j].Priority
		}
		return matches[i].Start < matches[j].Start
	})

	var kept []detect.Match
	for _, m := range matches {
		overlapped := false
		for _, k := range kept {
			if m.Start < k.End && k.Start < m.End {
				overlapped = true
				break
			}
		}
		if overlapped {
			e.metrics.RecordSuppression(ctx, string(m.Type))
			continue
		}
		kept = append(kept, m)
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

func (e *Engine) reject(ctx context.Context, reason string, m detect.Match) {
	e.metrics.RecordRejection(ctx, reason)
	e.log.DebugContext(ctx, "candidate rejected",
		"reason", reason,
		"raw", m.Raw,
		"pattern", string(m.Type),
	)
}
