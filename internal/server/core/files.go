package core

import (
	"container/list"
	"sync"

	"github.com/google/uuid"
)

// StoredFile is one file in a user's space. Name is the user-facing
// overwrite key; ID is the immutable download key, generated once at
// creation and never reused.
type StoredFile struct {
	Name        string
	ID          string
	URL         string
	StoragePath string
	MediaType   string
	Size        int64
}

// FileEntry is the listing projection of a stored file.
type FileEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NewFileID returns a fresh opaque file id (uuid4 truncated to 8 chars).
func NewFileID() string {
	return uuid.NewString()[:8]
}

type userFiles struct {
	order  *list.List // of *StoredFile, oldest at the front
	byName map[string]*list.Element
	byID   map[string]*list.Element
}

func newUserFiles() *userFiles {
	return &userFiles{
		order:  list.New(),
		byName: make(map[string]*list.Element),
		byID:   make(map[string]*list.Element),
	}
}

// UserFileStore keeps each user's files in insertion order with a fixed
// capacity. Inserting past capacity evicts the oldest entry first.
// Strict FIFO, not LRU: a recently downloaded file is still evicted if it
// is the oldest. That is a deliberate simplicity tradeoff, not a bug.
type UserFileStore struct {
	mu       sync.Mutex
	users    map[string]*userFiles
	capacity int
}

// NewUserFileStore creates a store holding at most maxFiles per user.
func NewUserFileStore(maxFiles int) *UserFileStore {
	return &UserFileStore{
		users:    make(map[string]*userFiles),
		capacity: maxFiles,
	}
}

func (s *UserFileStore) user(id string) *userFiles {
	uf, ok := s.users[id]
	if !ok {
		uf = newUserFiles()
		s.users[id] = uf
	}
	return uf
}

// FindByName returns a copy of the file with the given name, or nil.
func (s *UserFileStore) FindByName(user, name string) *StoredFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.user(user).byName[name]; ok {
		f := *el.Value.(*StoredFile)
		return &f
	}
	return nil
}

// FindByID returns a copy of the file with the given id, or nil.
func (s *UserFileStore) FindByID(user, fileID string) *StoredFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.user(user).byID[fileID]; ok {
		f := *el.Value.(*StoredFile)
		return &f
	}
	return nil
}

// List returns the user's files in insertion order.
func (s *UserFileStore) List(user string) []FileEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	uf := s.user(user)
	entries := make([]FileEntry, 0, uf.order.Len())
	for el := uf.order.Front(); el != nil; el = el.Next() {
		f := el.Value.(*StoredFile)
		entries = append(entries, FileEntry{Name: f.Name, URL: f.URL})
	}
	return entries
}

// Overwrite replaces the size and media type of an existing file in place.
// Identity (id, url, storage path) and the file's position in eviction
// order are untouched. Returns ErrFileNotFound when no file has that name.
func (s *UserFileStore) Overwrite(user, name, mediaType string, size int64) (*StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.user(user).byName[name]
	if !ok {
		return nil, ErrFileNotFound
	}
	f := el.Value.(*StoredFile)
	f.MediaType = mediaType
	f.Size = size
	out := *f
	return &out, nil
}

// Insert appends a new file to the user's collection. When the collection
// is at capacity the oldest entry is removed first and returned so the
// caller can destroy its backing bytes. Check and evict happen under one
// lock, so the collection never exceeds capacity.
func (s *UserFileStore) Insert(user string, file StoredFile) (evicted *StoredFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uf := s.user(user)
	if uf.order.Len() >= s.capacity {
		oldest := uf.order.Front()
		victim := oldest.Value.(*StoredFile)
		uf.order.Remove(oldest)
		delete(uf.byName, victim.Name)
		delete(uf.byID, victim.ID)
		v := *victim
		evicted = &v
	}

	f := file
	el := uf.order.PushBack(&f)
	uf.byName[f.Name] = el
	uf.byID[f.ID] = el
	return evicted
}
