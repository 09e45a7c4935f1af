package books_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/versecue/versecue/internal/books"
)

func mustCanon(t *testing.T) *books.Canon {
	t.Helper()
	c, err := books.LoadCanon()
	if err != nil {
		t.Fatalf("LoadCanon: %v", err)
	}
	return c
}

func TestLoadCanon(t *testing.T) {
	t.Parallel()

	c := mustCanon(t)
	if got := len(c.Books()); got != 66 {
		t.Fatalf("len(Books)=%d, want 66", got)
	}
	if got := c.Chapters("Psalms"); got != 150 {
		t.Errorf("Chapters(Psalms)=%d, want 150", got)
	}
	if got := c.Chapters("Philippians"); got != 4 {
		t.Errorf("Chapters(Philippians)=%d, want 4", got)
	}
	if !c.IsCanonical("1 Corinthians") {
		t.Error("IsCanonical(1 Corinthians)=false, want true")
	}
	if c.IsCanonical("Corinthians") {
		t.Error("IsCanonical(Corinthians)=true, want false")
	}
}

func TestResolver_ExactTiers(t *testing.T) {
	t.Parallel()

	r := books.NewResolver(mustCanon(t))

	cases := map[string]string{
		"John":           "John",
		"john":           "John",
		"Jn":             "John",
		"Gen":            "Genesis",
		"1 Corinthians":  "1 Corinthians",
		"first samuel":   "1 Samuel",
		"II Kings":       "2 Kings",
		"Revelations":    "Revelation",
		"1corinthians":   "1 Corinthians", // no-space tier
		"songofsolomon":  "Song of Solomon",
		"  Psalm  ":      "Psalms",
	}
	for raw, want := range cases {
		got, ok := r.Resolve(raw)
		if !ok {
			t.Errorf("Resolve(%q) not ok, want %q", raw, want)
			continue
		}
		if got != want {
			t.Errorf("Resolve(%q)=%q, want %q", raw, got, want)
		}
	}
}

func TestResolver_Mishearings(t *testing.T) {
	t.Parallel()

	r := books.NewResolver(mustCanon(t))

	cases := map[string]string{
		"filipinos": "Philippians",
		"glacians":  "Galatians",
		"collisions": "Colossians",
	}
	for raw, want := range cases {
		got, ok := r.Resolve(raw)
		if !ok || got != want {
			t.Errorf("Resolve(%q)=%q,%v, want %q,true", raw, got, ok, want)
		}
	}
}

func TestResolver_Fuzzy(t *testing.T) {
	t.Parallel()

	r := books.NewResolver(mustCanon(t))

	cases := map[string]string{
		"exodis":   "Exodus",
		"romanss":  "Romans",
		"galatins": "Galatians",
		"hebrewss": "Hebrews",
	}
	for raw, want := range cases {
		got, ok := r.Resolve(raw)
		if !ok || got != want {
			t.Errorf("Resolve(%q)=%q,%v, want %q,true", raw, got, ok, want)
		}
	}

	// Three trailing insertions put "galatiansxyz" at distance 3, beyond the
	// resolution threshold.
	if got, ok := r.Resolve("galatiansxyz"); ok {
		t.Errorf("Resolve(galatiansxyz)=%q ok, want no match at distance 3", got)
	}
}

func TestResolver_Exclusions(t *testing.T) {
	t.Parallel()

	r := books.NewResolver(mustCanon(t), books.WithExtraExclusions([]string{"amen"}))

	for _, raw := range []string{"to", "the", "is", "let's", "amen"} {
		if got, ok := r.Resolve(raw); ok {
			t.Errorf("Resolve(%q)=%q ok, want excluded", raw, got)
		}
		if s, ok := r.SuggestCorrection(raw); ok {
			t.Errorf("SuggestCorrection(%q)=%+v ok, want excluded", raw, s)
		}
	}

	// Short noise tokens never reach the fuzzy tier.
	if got, ok := r.Resolve("zz"); ok {
		t.Errorf("Resolve(zz)=%q ok, want no match", got)
	}
}

func TestResolver_AddMapping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := books.NewResolver(mustCanon(t))

	if err := r.AddMapping(ctx, "Feel Epians", "Philippians"); err != nil {
		t.Fatalf("AddMapping: %v", err)
	}
	if got, ok := r.Resolve("feel epians"); !ok || got != "Philippians" {
		t.Errorf("Resolve(feel epians)=%q,%v, want Philippians,true", got, ok)
	}

	// Overwrite is allowed and takes effect immediately.
	if err := r.AddMapping(ctx, "feel epians", "Ephesians"); err != nil {
		t.Fatalf("AddMapping overwrite: %v", err)
	}
	if got, _ := r.Resolve("feel epians"); got != "Ephesians" {
		t.Errorf("Resolve after overwrite=%q, want Ephesians", got)
	}

	// Target must be canonical, never an alias.
	if err := r.AddMapping(ctx, "something", "Phil"); err == nil {
		t.Error("AddMapping with alias target succeeded, want error")
	}
}

func TestResolver_SuggestCorrection(t *testing.T) {
	t.Parallel()

	r := books.NewResolver(mustCanon(t))

	cases := []struct {
		raw      string
		wantBook string
		wantConf float64
	}{
		{"John", "John", 1.0},
		{"exodis", "Exodus", 0.9},          // distance 1
		{"exodios", "Exodus", 0.7},         // distance 2
		{"galatiansxyz", "Galatians", 0.5}, // distance 3
	}
	for _, tc := range cases {
		got, ok := r.SuggestCorrection(tc.raw)
		if !ok {
			t.Errorf("SuggestCorrection(%q) not ok, want %q", tc.raw, tc.wantBook)
			continue
		}
		if got.Book != tc.wantBook || got.Confidence != tc.wantConf {
			t.Errorf("SuggestCorrection(%q)=%q,%.2f, want %q,%.2f",
				tc.raw, got.Book, got.Confidence, tc.wantBook, tc.wantConf)
		}
	}

	if s, ok := r.SuggestCorrection("qqqqqqqqqqqq"); ok {
		t.Errorf("SuggestCorrection(qqqqqqqqqqqq)=%+v ok, want no suggestion", s)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "learned.jsonl")
	store := books.NewFileStore(path)

	canon := mustCanon(t)
	r1 := books.NewResolver(canon, books.WithLearnedStore(store))
	if err := r1.AddMapping(ctx, "the letter to rome", "Romans"); err != nil {
		t.Fatalf("AddMapping: %v", err)
	}

	// A fresh resolver picks the taught mapping up from disk.
	r2 := books.NewResolver(canon, books.WithLearnedStore(store))
	if err := r2.LoadLearned(ctx); err != nil {
		t.Fatalf("LoadLearned: %v", err)
	}
	if got, ok := r2.Resolve("the letter to rome"); !ok || got != "Romans" {
		t.Errorf("Resolve(the letter to rome)=%q,%v, want Romans,true", got, ok)
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	t.Parallel()

	store := books.NewFileStore(filepath.Join(t.TempDir(), "absent.jsonl"))
	mappings, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mappings) != 0 {
		t.Errorf("Load returned %d mappings, want 0", len(mappings))
	}
}
