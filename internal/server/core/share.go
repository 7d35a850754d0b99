package core

import (
	"sync"

	"github.com/google/uuid"
)

// ShareLink is a single-use, unauthenticated download capability. It holds
// a snapshot of the file metadata taken at creation time, not a live
// reference: later overwrite or eviction of the source file does not
// touch the link.
type ShareLink struct {
	ID    string
	File  StoredFile
	Valid bool
	Owner string
}

// ShareRegistry tracks share links across all users.
type ShareRegistry struct {
	mu    sync.Mutex
	links map[string]*ShareLink
}

func NewShareRegistry() *ShareRegistry {
	return &ShareRegistry{links: make(map[string]*ShareLink)}
}

// Create registers a share link for a snapshot of file and returns its id
// (uuid4 truncated to 6 chars).
func (r *ShareRegistry) Create(owner string, file StoredFile) string {
	id := uuid.NewString()[:6]

	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[id] = &ShareLink{
		ID:    id,
		File:  file,
		Valid: true,
		Owner: owner,
	}
	return id
}

// Redeem returns the file snapshot and invalidates the link. Unknown and
// already-consumed links fail identically with ErrShareNotFound so callers
// cannot probe link history. Read and flip happen under one lock, so two
// concurrent redeems cannot both succeed.
func (r *ShareRegistry) Redeem(id string) (StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.links[id]
	if !ok || !l.Valid {
		return StoredFile{}, ErrShareNotFound
	}
	l.Valid = false
	return l.File, nil
}
