package books

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Mapping is a single user-taught alias correction.
type Mapping struct {
	// Alias is the normalized (lowercased, whitespace-collapsed) raw form.
	Alias string `json:"alias"`

	// Canonical is the canonical book name the alias resolves to.
	Canonical string `json:"canonical"`

	// CreatedAt records when the mapping was taught.
	CreatedAt time.Time `json:"created_at"`
}

// LearnedStore persists user-taught alias mappings across sessions.
type LearnedStore interface {
	// Load returns all stored mappings, oldest first. Later entries for the
	// same alias win when merged.
	Load(ctx context.Context) ([]Mapping, error)

	// Save appends one mapping.
	Save(ctx context.Context, m Mapping) error
}

// Compile-time interface check.
var _ LearnedStore = (*FileStore)(nil)

// FileStore persists learned mappings as append-only JSON lines in a local
// file, suitable for a single operator machine. Thread-safe for concurrent
// use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that writes to the given path.
// The file is created on first save if it does not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements [LearnedStore.Load]. A missing file yields no mappings and
// no error. Malformed lines are skipped rather than failing the whole load —
// one corrupt entry must not cost every learned correction.
func (fs *FileStore) Load(ctx context.Context) ([]Mapping, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("books: open learned store: %w", err)
	}
	defer f.Close()

	var mappings []Mapping
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var m Mapping
		if err := json.Unmarshal(line, &m); err != nil {
			continue
		}
		if m.Alias == "" || m.Canonical == "" {
			continue
		}
		mappings = append(mappings, m)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("books: read learned store: %w", err)
	}
	return mappings, nil
}

// Save implements [LearnedStore.Save] by appending one JSON line.
func (fs *FileStore) Save(ctx context.Context, m Mapping) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("books: marshal mapping: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(fs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("books: open learned store: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("books: write learned store: %w", err)
	}
	return nil
}
