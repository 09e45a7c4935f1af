package bible

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/versecue/versecue/pkg/scripture"
)

// SQLiteSchema is the verse database layout. Verse text is stored once per
// translation; books carry their chapter counts so structural validation
// works even for translations with partial verse coverage.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS translations (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL,
    abbreviation TEXT NOT NULL UNIQUE,
    year         INTEGER,
    is_default   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS books (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL UNIQUE,
    abbreviation TEXT NOT NULL,
    testament    TEXT NOT NULL,
    chapters     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS verses (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    translation_id INTEGER NOT NULL REFERENCES translations(id),
    book_id        INTEGER NOT NULL REFERENCES books(id),
    chapter        INTEGER NOT NULL,
    verse          INTEGER NOT NULL,
    text           TEXT NOT NULL,
    UNIQUE (translation_id, book_id, chapter, verse)
);

CREATE INDEX IF NOT EXISTS idx_verses_lookup
    ON verses (translation_id, book_id, chapter, verse);
`

// SQLiteStore serves verse lookups from a local SQLite database.
type SQLiteStore struct {
	db            *sql.DB
	translationID int64
	bookIDs       map[string]int64
	bookChapters  map[string]int
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens the verse database at path and binds the store to one
// translation, selected by abbreviation. An empty abbreviation selects the
// database's default translation.
func OpenSQLite(ctx context.Context, path, translation string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("bible: open %s: %w", path, err)
	}

	s := &SQLiteStore{
		db:           db,
		bookIDs:      make(map[string]int64),
		bookChapters: make(map[string]int),
	}
	if err := s.bindTranslation(ctx, translation); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadBooks(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) bindTranslation(ctx context.Context, abbreviation string) error {
	var row *sql.Row
	if abbreviation == "" {
		row = s.db.QueryRowContext(ctx,
			`SELECT id FROM translations WHERE is_default = 1 LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT id FROM translations WHERE abbreviation = ?`, abbreviation)
	}
	if err := row.Scan(&s.translationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("bible: translation %q not found", abbreviation)
		}
		return fmt.Errorf("bible: select translation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadBooks(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, chapters FROM books`)
	if err != nil {
		return fmt.Errorf("bible: load books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       int64
			name     string
			chapters int
		)
		if err := rows.Scan(&id, &name, &chapters); err != nil {
			return fmt.Errorf("bible: scan book: %w", err)
		}
		s.bookIDs[name] = id
		s.bookChapters[name] = chapters
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("bible: load books: %w", err)
	}
	if len(s.bookIDs) == 0 {
		return errors.New("bible: database has no books")
	}
	return nil
}

// MaxChapters implements [Store.MaxChapters] from the cached book table.
func (s *SQLiteStore) MaxChapters(_ context.Context, book string) (int, error) {
	n, ok := s.bookChapters[book]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBook, book)
	}
	return n, nil
}

// VerseCount implements [Store.VerseCount].
func (s *SQLiteStore) VerseCount(ctx context.Context, book string, chapter int) (int, error) {
	id, ok := s.bookIDs[book]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBook, book)
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM verses
		WHERE translation_id = ? AND book_id = ? AND chapter = ?`,
		s.translationID, id, chapter).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("bible: count verses %s %d: %w", book, chapter, err)
	}
	return count, nil
}

// VerseText implements [Store.VerseText].
func (s *SQLiteStore) VerseText(ctx context.Context, ref scripture.Reference) (string, error) {
	id, ok := s.bookIDs[ref.Book]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBook, ref.Book)
	}

	var text string
	err := s.db.QueryRowContext(ctx, `
		SELECT text FROM verses
		WHERE translation_id = ? AND book_id = ? AND chapter = ? AND verse = ?`,
		s.translationID, id, ref.Chapter, ref.VerseStart).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrVerseNotFound, ref.Display())
	}
	if err != nil {
		return "", fmt.Errorf("bible: select verse %s: %w", ref.Display(), err)
	}
	return text, nil
}
