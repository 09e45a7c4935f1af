package books

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

const (
	defaultMaxEditDistance = 2
	defaultMinFuzzyLength  = 3
)

// Option is a functional option for configuring a [Resolver].
type Option func(*Resolver)

// WithMaxEditDistance sets the maximum Levenshtein distance the fuzzy tier
// accepts. Default: 2.
func WithMaxEditDistance(d int) Option {
	return func(r *Resolver) {
		r.maxDistance = d
	}
}

// WithMinFuzzyLength sets the minimum input length (in runes) required
// before the fuzzy tier runs. Default: 3.
func WithMinFuzzyLength(n int) Option {
	return func(r *Resolver) {
		r.minFuzzyLen = n
	}
}

// WithExtraExclusions adds words to the exclusion set on top of the embedded
// list. Useful for venue-specific vocabulary that keeps fuzzy-matching into
// a book name.
func WithExtraExclusions(words []string) Option {
	return func(r *Resolver) {
		for _, w := range words {
			r.exclusions[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
		}
	}
}

// WithLearnedStore attaches a [LearnedStore]. Mappings already in the store
// are merged into the alias table by [Resolver.LoadLearned]; mappings added
// at runtime through [Resolver.AddMapping] are persisted to it.
func WithLearnedStore(s LearnedStore) Option {
	return func(r *Resolver) {
		r.learned = s
	}
}

// Suggestion is an advisory correction produced by
// [Resolver.SuggestCorrection]. It is never applied automatically.
type Suggestion struct {
	// Book is the suggested canonical book name.
	Book string

	// Confidence reflects how the suggestion was found: 1.0 for an exact
	// alias hit, then 0.9 / 0.7 / 0.5 for edit distance 1 / 2 / 3.
	Confidence float64
}

// Resolver maps raw book-name text onto canonical book names using the
// tiered strategy documented on the package. The alias table merges four
// sources: canonical names, standard abbreviations, documented mishearings,
// and user-taught corrections.
//
// Resolver is safe for concurrent use. The only mutation path is
// [Resolver.AddMapping]; all lookups take a read lock.
type Resolver struct {
	canon       *Canon
	maxDistance int
	minFuzzyLen int
	learned     LearnedStore

	mu         sync.RWMutex
	aliases    map[string]string // lowercased alias → canonical name
	nospace    map[string]string // space-stripped alias → canonical name
	aliasKeys  []string          // sorted; fixed iteration order for fuzzy ties
	exclusions map[string]struct{}
}

// NewResolver builds a [Resolver] over the given catalogue. The embedded
// canonical names, abbreviations, and mishearings are merged into the alias
// table immediately; learned mappings are merged by [Resolver.LoadLearned].
func NewResolver(canon *Canon, opts ...Option) *Resolver {
	r := &Resolver{
		canon:       canon,
		maxDistance: defaultMaxEditDistance,
		minFuzzyLen: defaultMinFuzzyLength,
		aliases:     make(map[string]string),
		nospace:     make(map[string]string),
		exclusions:  make(map[string]struct{}, len(canon.exclusions)),
	}
	for w := range canon.exclusions {
		r.exclusions[w] = struct{}{}
	}
	for _, o := range opts {
		o(r)
	}

	for _, b := range canon.Books() {
		r.insertLocked(b.Name, b.Name)
		for _, a := range b.Aliases {
			r.insertLocked(a, b.Name)
		}
	}
	for raw, canonical := range canon.mishearings {
		r.insertLocked(raw, canonical)
	}
	slices.Sort(r.aliasKeys)
	return r
}

// Resolve maps raw to a canonical book name. The boolean is false when no
// tier produces a match; callers must drop the candidate in that case.
func (r *Resolver) Resolve(raw string) (string, bool) {
	key := normalizeAlias(raw)
	if key == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Exclusion gate runs before everything else, including exact lookup of
	// learned aliases: a taught mapping must not resurrect "to" as a book.
	if _, excluded := r.exclusions[key]; excluded {
		return "", false
	}

	if name, ok := r.aliases[key]; ok {
		return name, true
	}

	// Short tokens get no further tiers: two characters of speech noise are
	// within edit distance 2 of half the abbreviation table.
	if utf8.RuneCountInString(key) <= 2 {
		return "", false
	}

	if name, ok := r.nospace[strings.ReplaceAll(key, " ", "")]; ok {
		return name, true
	}

	if utf8.RuneCountInString(key) >= r.minFuzzyLen {
		if name, dist := r.nearestLocked(key); dist >= 0 && dist <= r.maxDistance {
			return name, true
		}
	}
	return "", false
}

// AddMapping teaches the resolver a new alias. The insert is idempotent and
// overwrites any previous mapping for the same alias; it takes effect for all
// subsequent resolutions. When a [LearnedStore] is configured the mapping is
// persisted before the in-memory table is updated.
func (r *Resolver) AddMapping(ctx context.Context, alias, canonical string) error {
	key := normalizeAlias(alias)
	if key == "" {
		return fmt.Errorf("books: alias must not be empty")
	}
	if !r.canon.IsCanonical(canonical) {
		return fmt.Errorf("books: %q is not a canonical book name", canonical)
	}
	book, _ := r.canon.Lookup(canonical)

	if r.learned != nil {
		m := Mapping{Alias: key, Canonical: book.Name, CreatedAt: time.Now().UTC()}
		if err := r.learned.Save(ctx, m); err != nil {
			return fmt.Errorf("books: persist mapping %q: %w", key, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(key, book.Name)
	slices.Sort(r.aliasKeys)
	return nil
}

// LoadLearned merges all mappings from the configured [LearnedStore] into
// the alias table. Call once at startup, after NewResolver. A resolver
// without a learned store loads nothing and returns nil.
func (r *Resolver) LoadLearned(ctx context.Context) error {
	if r.learned == nil {
		return nil
	}
	mappings, err := r.learned.Load(ctx)
	if err != nil {
		return fmt.Errorf("books: load learned mappings: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range mappings {
		if !r.canon.IsCanonical(m.Canonical) {
			continue // stale entry from an older catalogue; skip, don't fail
		}
		r.insertLocked(m.Alias, m.Canonical)
	}
	slices.Sort(r.aliasKeys)
	return nil
}

// SuggestCorrection proposes a canonical book for raw without applying
// anything. It tries an exact alias hit first, then fuzzy matches at
// increasing distance thresholds (1, 2, 3), assigning confidences 1.0, 0.9,
// 0.7, and 0.5 respectively. Used by correction-learning workflows; the
// suggestion is advisory only.
func (r *Resolver) SuggestCorrection(raw string) (Suggestion, bool) {
	key := normalizeAlias(raw)
	if key == "" {
		return Suggestion{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, excluded := r.exclusions[key]; excluded {
		return Suggestion{}, false
	}
	if name, ok := r.aliases[key]; ok {
		return Suggestion{Book: name, Confidence: 1.0}, true
	}
	if utf8.RuneCountInString(key) < r.minFuzzyLen {
		return Suggestion{}, false
	}

	name, dist := r.nearestLocked(key)
	switch {
	case dist < 0:
		return Suggestion{}, false
	case dist <= 1:
		return Suggestion{Book: name, Confidence: 0.9}, true
	case dist <= 2:
		return Suggestion{Book: name, Confidence: 0.7}, true
	case dist <= 3:
		return Suggestion{Book: name, Confidence: 0.5}, true
	}
	return Suggestion{}, false
}

// nearestLocked returns the canonical name of the alias key with the minimum
// Levenshtein distance to key, and that distance. Returns ("", -1) when the
// table is empty. Ties keep the lexicographically first alias so results are
// stable across runs. Callers must hold at least a read lock.
func (r *Resolver) nearestLocked(key string) (string, int) {
	bestDist := -1
	bestName := ""
	for _, alias := range r.aliasKeys {
		d := matchr.Levenshtein(key, alias)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestName = r.aliases[alias]
		}
	}
	return bestName, bestDist
}

// insertLocked adds one alias → canonical pair to all lookup structures.
// Callers must hold the write lock (or be inside construction).
func (r *Resolver) insertLocked(alias, canonical string) {
	key := normalizeAlias(alias)
	if key == "" {
		return
	}
	if _, exists := r.aliases[key]; !exists {
		r.aliasKeys = append(r.aliasKeys, key)
	}
	r.aliases[key] = canonical
	r.nospace[strings.ReplaceAll(key, " ", "")] = canonical
}

// normalizeAlias lowercases, trims, and collapses internal whitespace.
func normalizeAlias(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
