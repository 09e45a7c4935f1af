// Package detect scans transcript text for candidate scripture references.
//
// The scanner holds a fixed, ordered table of grammar rules, most
// syntactically specific first (explicit "chapter … verse" keywords) down to
// least specific (a bare "Book N"). Every rule runs independently against the
// same input, so one scan may yield overlapping candidates; the pipeline
// downstream decides which overlapping match owns a span. Priority is a
// first-class field on each rule so that reordering is a deliberate,
// testable change rather than an accident of registration order.
//
// Candidate book text keeps any leading filler words the rule swallowed
// ("let's turn to John …"); Scan strips them iteratively before handing the
// book text on, since speech fragments routinely stack several fillers in
// front of the real book name.
package detect

import (
	"regexp"
	"strings"

	"github.com/versecue/versecue/pkg/scripture"
)

// DefaultMaxChapter is the chapter sanity bound. No book has more chapters
// than Psalms' 150, so anything larger is a spoken-number misparse and is
// rejected before the Bible store is ever consulted.
const DefaultMaxChapter = 150

// Match is one candidate reference produced by a scan. Chapter and verse
// numbers are already resolved to integers; the book is still raw text and
// must go through the book resolver.
type Match struct {
	// RawBook is the candidate book text with leading fillers stripped.
	RawBook string

	// Chapter is the chapter number, ≥ 1 and ≤ the sanity bound.
	Chapter int

	// VerseStart is the first verse. Chapter-only matches imply verse 1.
	VerseStart int

	// VerseEnd is the last verse of a range, 0 for a single verse.
	VerseEnd int

	// Type is the pattern type that produced the match.
	Type scripture.PatternType

	// Priority is the producing rule's priority; lower is more specific.
	Priority int

	// Raw is the exact matched substring, trimmed.
	Raw string

	// Start and End are byte offsets of the match within the scanned text.
	Start, End int
}

// Option is a functional option for configuring a [Scanner].
type Option func(*Scanner)

// WithMaxChapter overrides the chapter sanity bound.
// Default: [DefaultMaxChapter].
func WithMaxChapter(n int) Option {
	return func(s *Scanner) {
		s.maxChapter = n
	}
}

// WithExtraFillers adds words to the leading-filler strip list on top of the
// built-in table.
func WithExtraFillers(words []string) Option {
	return func(s *Scanner) {
		for _, w := range words {
			s.fillers[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
		}
	}
}

// Scanner runs the grammar rule table over transcript text. It is read-only
// after construction and safe for concurrent use.
type Scanner struct {
	rules      []rule
	maxChapter int
	fillers    map[string]struct{}
}

// rule pairs a compiled pattern with the builder that turns its capture
// groups into a [Match].
type rule struct {
	typ      scripture.PatternType
	priority int
	re       *regexp.Regexp
	build    func(s *Scanner, groups []string) (Match, bool)
}

// bookPat captures the candidate book text: up to four leading words (which
// may be fillers, stripped later) plus the book word itself. Non-greedy so
// the book expands only as far as the rest of the rule requires.
const bookPat = `((?:[\w']+\s+){0,4}?[\w']+)`

// numTok captures a chapter or verse token for the keyword rules: digits, a
// number word, or a two-word/hyphenated compound. Constraining the token to
// actual numbers keeps the non-greedy book capture from stopping early and
// handing a book word to the numeral resolver.
const numTok = `(\d{1,3}|` + numWord + `(?:[\s-]` + numWord + `)?)`

// numWord is the alternation of number words the spokenWords rule accepts.
// Longer words come before their prefixes ("sixteen" before "six") so the
// leftmost-first alternation picks the whole word.
const numWord = `(?:eleven|twelve|thirteen|fourteen|fifteen|sixteen|` +
	`seventeen|eighteen|nineteen|twenty|thirty|forty|fifty|` +
	`one|two|three|four|five|six|seven|eight|nine|ten)`

// NewScanner compiles the rule table.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		maxChapter: DefaultMaxChapter,
		fillers:    make(map[string]struct{}, len(defaultFillers)),
	}
	for _, w := range defaultFillers {
		s.fillers[w] = struct{}{}
	}
	for _, o := range opts {
		o(s)
	}

	s.rules = []rule{
		{
			typ:      scripture.PatternVerbal,
			priority: 1,
			re: regexp.MustCompile(`(?i)` + bookPat +
				`\s+chapter\s+` + numTok + `\s*,?\s+verses?\s+` + numTok +
				`(?:\s*(?:-|–|to|through)\s*` + numTok + `)?`),
			build: buildKeyword,
		},
		{
			typ:      scripture.PatternVerbalShort,
			priority: 2,
			re: regexp.MustCompile(`(?i)` + bookPat +
				`\s+` + numTok + `\s*,?\s+verses?\s+` + numTok +
				`(?:\s*(?:-|–|to|through)\s*` + numTok + `)?`),
			build: buildKeyword,
		},
		{
			typ:      scripture.PatternStandard,
			priority: 3,
			re: regexp.MustCompile(`(?i)` + bookPat +
				`\s+(\d{1,3}):(\d{1,3})(?:\s*[-–]\s*(\d{1,3}))?\b`),
			build: buildStandard,
		},
		{
			typ:      scripture.PatternSpokenWords,
			priority: 4,
			re: regexp.MustCompile(`(?i)` + bookPat +
				`\s+(` + numWord + `(?:[\s-]` + numWord + `){1,3})\b`),
			build: buildSpokenWords,
		},
		{
			typ:      scripture.PatternSpokenRange,
			priority: 5,
			re: regexp.MustCompile(`(?i)` + bookPat +
				`\s+(?:(\d{1,3})\s+(\d{1,3})|(\d{3,4}))\s+(?:to|through)\s+(\d{1,3})\b`),
			build: buildSpokenRange,
		},
		{
			typ:      scripture.PatternSpoken,
			priority: 6,
			re: regexp.MustCompile(`(?i)` + bookPat +
				`\s+(?:(\d{1,3})\s+(\d{1,3})|(\d{3,4}))\b`),
			build: buildSpoken,
		},
		{
			typ:      scripture.PatternChapterOnly,
			priority: 7,
			re: regexp.MustCompile(`(?i)` + bookPat + `\s+(\d{1,3})\b`),
			build: buildChapterOnly,
		},
	}
	return s
}

// Scan runs every rule over text and returns all candidates whose numerals
// parse and whose chapter passes the sanity bound. Overlapping candidates
// from different rules are all returned; the caller resolves ownership.
// Scan never fails — malformed input yields an empty slice.
func (s *Scanner) Scan(text string) []Match {
	var matches []Match
	for _, r := range s.rules {
		locs := r.re.FindAllStringSubmatchIndex(text, -1)
		for _, loc := range locs {
			groups := submatches(text, loc)
			m, ok := r.build(s, groups)
			if !ok {
				continue
			}
			if m.Chapter < 1 || m.Chapter > s.maxChapter {
				continue
			}
			if m.VerseStart < 1 {
				continue
			}
			if m.VerseEnd != 0 && m.VerseEnd < m.VerseStart {
				continue
			}
			m.RawBook = s.stripFillers(groups[1])
			if m.RawBook == "" {
				continue
			}
			m.Type = r.typ
			m.Priority = r.priority
			m.Raw = strings.TrimSpace(text[loc[0]:loc[1]])
			m.Start, m.End = loc[0], loc[1]
			matches = append(matches, m)
		}
	}
	return matches
}

// stripFillers removes leading filler words from candidate book text,
// iteratively — speech fragments can stack several fillers before the real
// book name ("well let's turn to Exodus").
func (s *Scanner) stripFillers(book string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(book)))
	for len(words) > 0 {
		if _, isFiller := s.fillers[words[0]]; !isFiller {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// submatches extracts capture-group strings from a FindAllStringSubmatchIndex
// location slice. Unmatched groups become empty strings.
func submatches(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		groups[i] = text[start:end]
	}
	return groups
}
