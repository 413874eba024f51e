// Package favorites keeps the ordered list of songs a user has marked.
//
// The list is stored as one JSON array under a fixed key and is read back
// from the backend on every call, so several Store values sharing one
// backend always agree.
package favorites

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"music-api-go/logcolors"
	"music-api-go/storage"

	log "github.com/sirupsen/logrus"
)

// Key is the storage slot holding the favorites array
const Key = "music_favorites"

var (
	ErrMissingIndex      = errors.New("favorite requires a song index")
	ErrBackupUnsupported = errors.New("storage backend does not support backups")
)

// backupBackend is implemented by backends that can snapshot themselves
type backupBackend interface {
	Backup() (string, error)
	ListBackups() ([]storage.BackupInfo, error)
}

// Entry is one persisted favorite. The JSON layout matches what the
// browser page stored in localStorage.
type Entry struct {
	Index     string `json:"n"`
	Title     string `json:"title"`
	Artist    string `json:"singer"`
	StreamURL string `json:"music_url"`
	CoverURL  string `json:"cover"`
}

// Song is the input to Toggle. StreamURL and CoverURL may be empty when
// favoriting straight from a search result.
type Song struct {
	Index     string `json:"n"`
	Title     string `json:"title"`
	Artist    string `json:"singer"`
	StreamURL string `json:"music_url,omitempty"`
	CoverURL  string `json:"cover,omitempty"`
}

// UnmarshalJSON accepts n as a string or a number; the page stored whatever
// the upstream sent.
func (e *Entry) UnmarshalJSON(b []byte) error {
	type plain Entry
	var raw struct {
		plain
		Index json.RawMessage `json:"n"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	index, err := decodeIndex(raw.Index)
	if err != nil {
		return err
	}
	*e = Entry(raw.plain)
	e.Index = index
	return nil
}

func decodeIndex(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid favorite index %s", raw)
	}
	return n.String(), nil
}

type Store struct {
	backend storage.Backend
}

func NewStore(backend storage.Backend) *Store {
	return &Store{backend: backend}
}

// List returns favorites in insertion order. A missing or unparseable
// value is an empty list; only backend failures are errors.
func (s *Store) List() ([]Entry, error) {
	data, found, err := s.backend.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return decode(data, found), nil
}

// Toggle removes the entry with song.Index if present, otherwise appends it.
// It reports whether the song is a favorite afterwards.
func (s *Store) Toggle(song Song) (bool, error) {
	if song.Index == "" {
		return false, ErrMissingIndex
	}

	var favorited bool
	err := s.backend.Update(Key, func(current []byte, found bool) ([]byte, error) {
		entries := decode(current, found)

		if i := indexOf(entries, song.Index); i >= 0 {
			entries = append(entries[:i], entries[i+1:]...)
			favorited = false
		} else {
			entries = append(entries, Entry{
				Index:     song.Index,
				Title:     song.Title,
				Artist:    song.Artist,
				StreamURL: song.StreamURL,
				CoverURL:  song.CoverURL,
			})
			favorited = true
		}

		return json.Marshal(entries)
	})
	if err != nil {
		return false, fmt.Errorf("failed to update favorites: %w", err)
	}

	if favorited {
		log.Infof("%s Added: %s - %s (n: %s)", logcolors.LogFavorites, song.Title, song.Artist, song.Index)
	} else {
		log.Infof("%s Removed: n=%s", logcolors.LogFavorites, song.Index)
	}
	return favorited, nil
}

// IsFavorite reports whether any stored entry has the given index
func (s *Store) IsFavorite(index string) (bool, error) {
	entries, err := s.List()
	if err != nil {
		return false, err
	}
	return indexOf(entries, index) >= 0, nil
}

// Backup snapshots the underlying storage and returns the backup path
func (s *Store) Backup() (string, error) {
	b, ok := s.backend.(backupBackend)
	if !ok {
		return "", ErrBackupUnsupported
	}
	return b.Backup()
}

func (s *Store) ListBackups() ([]storage.BackupInfo, error) {
	b, ok := s.backend.(backupBackend)
	if !ok {
		return nil, ErrBackupUnsupported
	}
	return b.ListBackups()
}

func decode(data []byte, found bool) []Entry {
	entries := []Entry{}
	if !found || len(data) == 0 {
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warnf("%s Stored favorites are unreadable, treating as empty: %v", logcolors.LogFavorites, err)
		return []Entry{}
	}
	if entries == nil {
		// a stored JSON null
		return []Entry{}
	}
	return entries
}

func indexOf(entries []Entry, index string) int {
	for i, e := range entries {
		if e.Index == index {
			return i
		}
	}
	return -1
}
