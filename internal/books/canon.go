// Package books resolves raw, possibly misheard book-name text to one of the
// 66 canonical Bible book names.
//
// Resolution is tiered, in strict order with short-circuiting:
//
//  1. Exclusion gate — common function words never resolve, even fuzzily.
//  2. Length gate — inputs of ≤ 2 characters resolve only via an exact
//     alias hit, never fuzzily.
//  3. Exact lookup in the merged alias table (canonical names, standard
//     abbreviations, documented mishearings, user-taught corrections).
//  4. Lookup with internal spaces removed ("1corinthians").
//  5. Fuzzy lookup — minimum Levenshtein distance over all alias keys,
//     accepted when the distance is ≤ 2 and the input is ≥ 3 characters.
//
// Exact matches run first so that a perfect hit is never displaced by a
// near-miss, and the exclusion/length gates exist because fuzzy matching
// over a large alias set otherwise produces frequent false positives on
// short common words.
package books

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/books.yaml
var booksYAML []byte

//go:embed data/mishearings.yaml
var mishearingsYAML []byte

//go:embed data/exclusions.yaml
var exclusionsYAML []byte

// Book describes one canonical book of the catalogue.
type Book struct {
	// Name is the canonical book name (e.g., "1 Corinthians").
	Name string `yaml:"name"`

	// Testament is "OT" or "NT".
	Testament string `yaml:"testament"`

	// Chapters is the number of chapters in the book.
	Chapters int `yaml:"chapters"`

	// Aliases lists written abbreviations and alternate forms that resolve
	// to this book. Matching is case-insensitive.
	Aliases []string `yaml:"aliases"`
}

// Canon is the loaded book catalogue. It is read-only after construction.
type Canon struct {
	books       []Book
	byName      map[string]*Book // lowercased canonical name → book
	mishearings map[string]string
	exclusions  map[string]struct{}
}

type booksFile struct {
	Books []Book `yaml:"books"`
}

type mishearingsFile struct {
	Mishearings map[string]string `yaml:"mishearings"`
}

type exclusionsFile struct {
	Exclusions []string `yaml:"exclusions"`
}

// canonBookCount is the fixed size of the canonical catalogue.
const canonBookCount = 66

// LoadCanon parses the embedded catalogue, mishearing, and exclusion data.
// It fails if the catalogue does not contain exactly the 66 canonical books
// or if a mishearing points at an unknown book.
func LoadCanon() (*Canon, error) {
	var bf booksFile
	if err := yaml.Unmarshal(booksYAML, &bf); err != nil {
		return nil, fmt.Errorf("books: decode books.yaml: %w", err)
	}
	if len(bf.Books) != canonBookCount {
		return nil, fmt.Errorf("books: catalogue has %d books, want %d", len(bf.Books), canonBookCount)
	}

	var mf mishearingsFile
	if err := yaml.Unmarshal(mishearingsYAML, &mf); err != nil {
		return nil, fmt.Errorf("books: decode mishearings.yaml: %w", err)
	}

	var ef exclusionsFile
	if err := yaml.Unmarshal(exclusionsYAML, &ef); err != nil {
		return nil, fmt.Errorf("books: decode exclusions.yaml: %w", err)
	}

	c := &Canon{
		books:       bf.Books,
		byName:      make(map[string]*Book, len(bf.Books)),
		mishearings: make(map[string]string, len(mf.Mishearings)),
		exclusions:  make(map[string]struct{}, len(ef.Exclusions)),
	}
	for i := range c.books {
		b := &c.books[i]
		c.byName[strings.ToLower(b.Name)] = b
	}
	for raw, canonical := range mf.Mishearings {
		if _, ok := c.byName[strings.ToLower(canonical)]; !ok {
			return nil, fmt.Errorf("books: mishearing %q maps to unknown book %q", raw, canonical)
		}
		c.mishearings[strings.ToLower(raw)] = canonical
	}
	for _, w := range ef.Exclusions {
		c.exclusions[strings.ToLower(w)] = struct{}{}
	}
	return c, nil
}

// Books returns the catalogue in canonical order.
func (c *Canon) Books() []Book {
	return c.books
}

// Lookup returns the book with the given canonical name, case-insensitive.
func (c *Canon) Lookup(name string) (Book, bool) {
	b, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return Book{}, false
	}
	return *b, true
}

// Chapters returns the chapter count for the given canonical name, or 0 when
// the name is unknown.
func (c *Canon) Chapters(name string) int {
	b, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return 0
	}
	return b.Chapters
}

// IsCanonical reports whether name is one of the 66 canonical book names.
func (c *Canon) IsCanonical(name string) bool {
	_, ok := c.byName[strings.ToLower(name)]
	return ok
}
