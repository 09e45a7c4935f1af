package bible

import (
	"context"
	"fmt"
	"sync"

	"github.com/versecue/versecue/internal/books"
	"github.com/versecue/versecue/pkg/scripture"
)

// MemStore validates references against the canon's chapter counts without
// any verse text on disk. Verse text can be layered in with [MemStore.Put],
// which also enables verse-level validation for the chapters it covers.
type MemStore struct {
	mu       sync.RWMutex
	chapters map[string]int
	verses   map[string]map[int]map[int]string
}

var _ Store = (*MemStore)(nil)

// NewMemStore builds a store from the canon's chapter counts.
func NewMemStore(canon *books.Canon) *MemStore {
	s := &MemStore{
		chapters: make(map[string]int, len(canon.Books())),
		verses:   make(map[string]map[int]map[int]string),
	}
	for _, b := range canon.Books() {
		s.chapters[b.Name] = b.Chapters
	}
	return s
}

// Put stores verse text, creating chapter and book entries as needed.
func (s *MemStore) Put(book string, chapter, verse int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verses[book] == nil {
		s.verses[book] = make(map[int]map[int]string)
	}
	if s.verses[book][chapter] == nil {
		s.verses[book][chapter] = make(map[int]string)
	}
	s.verses[book][chapter][verse] = text
}

// MaxChapters implements [Store.MaxChapters].
func (s *MemStore) MaxChapters(_ context.Context, book string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.chapters[book]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBook, book)
	}
	return n, nil
}

// VerseCount implements [Store.VerseCount]. Chapters without loaded verse
// text report 0, signalling chapter-level validation only.
func (s *MemStore) VerseCount(_ context.Context, book string, chapter int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.chapters[book]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBook, book)
	}
	return len(s.verses[book][chapter]), nil
}

// VerseText implements [Store.VerseText].
func (s *MemStore) VerseText(_ context.Context, ref scripture.Reference) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.chapters[ref.Book]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBook, ref.Book)
	}
	text, ok := s.verses[ref.Book][ref.Chapter][ref.VerseStart]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrVerseNotFound, ref.Display())
	}
	return text, nil
}
