package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danieljhkim/routemgr/internal/fsops"
)

// JournalStore provides an interface for persisting move journal entries.
type JournalStore interface {
	// Append adds an entry, dropping the oldest entries beyond the limit.
	Append(entry Entry) error

	// List returns up to limit entries, newest first. limit <= 0 means all.
	List(limit int) ([]Entry, error)
}

// FileJournalStore implements JournalStore using a JSON file on disk.
type FileJournalStore struct {
	fs         fsops.FS
	path       string
	maxEntries int
}

// NewFileJournalStore creates a new FileJournalStore.
func NewFileJournalStore(fs fsops.FS, path string) *FileJournalStore {
	return &FileJournalStore{
		fs:         fs,
		path:       path,
		maxEntries: DefaultMaxEntries,
	}
}

// SetMaxEntries changes the retention limit.
func (s *FileJournalStore) SetMaxEntries(n int) {
	if n > 0 {
		s.maxEntries = n
	}
}

// Append adds an entry to the journal atomically.
func (s *FileJournalStore) Append(entry Entry) error {
	journal, err := s.load()
	if err != nil {
		return err
	}

	journal.Entries = append(journal.Entries, entry)
	if over := len(journal.Entries) - s.maxEntries; over > 0 {
		journal.Entries = journal.Entries[over:]
	}

	data, err := json.MarshalIndent(journal, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}

	return nil
}

// List returns journal entries, newest first.
func (s *FileJournalStore) List(limit int) ([]Entry, error) {
	journal, err := s.load()
	if err != nil {
		return nil, err
	}

	n := len(journal.Entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	for i := len(journal.Entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, journal.Entries[i])
	}
	return out, nil
}

func (s *FileJournalStore) load() (*Journal, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewJournal(), nil
		}
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var journal Journal
	if err := json.Unmarshal(data, &journal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journal: %w", err)
	}
	if journal.Version > SchemaVersion {
		return nil, fmt.Errorf("journal version %d is newer than supported version %d", journal.Version, SchemaVersion)
	}
	if journal.Entries == nil {
		journal.Entries = []Entry{}
	}
	journal.Version = SchemaVersion

	return &journal, nil
}
