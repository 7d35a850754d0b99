package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"fileden/internal/server/config"
	"fileden/internal/server/core"
	"fileden/internal/server/storage"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a bad user id or password. The
// caller surfaces it as a generic credential error.
var ErrInvalidCredentials = errors.New("incorrect user_id or password")

// FileService is the access-control facade over the core stores and byte
// storage. It owns the write-then-record ordering on uploads and the
// per-user critical section around check-exists + write + evict + insert.
type FileService struct {
	tokens *core.TokenStore
	files  *core.UserFileStore
	quota  *core.QuotaTracker
	shares *core.ShareRegistry
	store  storage.Store
	clock  core.Clock

	userID       string
	passwordHash []byte

	uploads keyedMutex
}

// NewFileService wires the core stores to the byte storage collaborator.
// The configured password is bcrypt-hashed once at construction.
func NewFileService(cfg *config.Config, store storage.Store, clock core.Clock) (*FileService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash configured password: %w", err)
	}

	return &FileService{
		tokens:       core.NewTokenStore(cfg.TokenTTL, cfg.TokenCallQuota),
		files:        core.NewUserFileStore(cfg.MaxUserFiles),
		quota:        core.NewQuotaTracker(cfg.DownloadQuotaBytes, cfg.DownloadQuotaWindow),
		shares:       core.NewShareRegistry(),
		store:        store,
		clock:        clock,
		userID:       cfg.UserID,
		passwordHash: hash,
	}, nil
}

// Authenticate verifies the credentials and issues a fresh access token.
func (s *FileService) Authenticate(userID, password string) (string, error) {
	idMatch := subtle.ConstantTimeCompare([]byte(userID), []byte(s.userID)) == 1
	pwErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !idMatch || pwErr != nil {
		return "", ErrInvalidCredentials
	}

	token := s.tokens.Issue(s.userID, s.clock.Now())
	slog.Info("access token issued", "user", s.userID)
	return token, nil
}

// Authorize validates an access token and spends one unit of its call
// budget. The unit is consumed regardless of whether the operation behind
// the token subsequently succeeds.
func (s *FileService) Authorize(tokenID string) (string, error) {
	return s.tokens.ValidateAndConsume(tokenID, s.clock.Now())
}

// Upload stores the bytes and records the file in the user's space.
// Overwrite-by-name keeps the existing id, url and storage path; a new
// name at capacity evicts the oldest file and destroys its bytes. Bytes
// hit disk before any metadata changes, so a failed write leaves the
// bookkeeping untouched.
func (s *FileService) Upload(user, name, mediaType string, data io.Reader) (*core.StoredFile, error) {
	unlock := s.uploads.lock(user)
	defer unlock()

	if existing := s.files.FindByName(user, name); existing != nil {
		n, err := s.store.Save(existing.StoragePath, data)
		if err != nil {
			return nil, fmt.Errorf("failed to store file: %w", err)
		}
		f, err := s.files.Overwrite(user, name, mediaType, n)
		if err != nil {
			return nil, err
		}
		slog.Info("file overwritten", "user", user, "name", name, "id", f.ID, "size", n)
		return f, nil
	}

	id := core.NewFileID()
	path := s.store.PathFor(user, id)
	n, err := s.store.Save(path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	f := core.StoredFile{
		Name:        name,
		ID:          id,
		URL:         "/f/" + id,
		StoragePath: path,
		MediaType:   mediaType,
		Size:        n,
	}
	if evicted := s.files.Insert(user, f); evicted != nil {
		if err := s.store.Delete(evicted.StoragePath); err != nil {
			slog.Error("failed to delete evicted file", "id", evicted.ID, "error", err)
		}
		slog.Info("evicted oldest file", "user", user, "name", evicted.Name, "id", evicted.ID)
	}

	slog.Info("file uploaded", "user", user, "name", name, "id", id, "size", n)
	return &f, nil
}

// ListFiles returns the user's files in insertion order.
func (s *FileService) ListFiles(user string) []core.FileEntry {
	return s.files.List(user)
}

// Download resolves a file by id, charges it against the traffic quota and
// opens its bytes. The quota record is appended on admission, before the
// bytes are opened, matching the admit-then-transfer accounting.
func (s *FileService) Download(user, fileID string) (*core.StoredFile, io.ReadCloser, error) {
	f := s.files.FindByID(user, fileID)
	if f == nil {
		return nil, nil, core.ErrFileNotFound
	}

	if err := s.quota.CheckAndRecord(user, f.Size, f.ID, s.clock.Now()); err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Open(f.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("stored bytes missing for %s: %w", f.ID, err)
	}
	return f, rc, nil
}

// CreateShare snapshots the file's current metadata into a one-time share
// link and returns its url.
func (s *FileService) CreateShare(user, fileID string) (string, error) {
	f := s.files.FindByID(user, fileID)
	if f == nil {
		return "", core.ErrFileNotFound
	}

	id := s.shares.Create(user, *f)
	slog.Info("share link created", "user", user, "file_id", fileID, "share_id", id)
	return "/s/" + id, nil
}

// RedeemShare consumes a share link and opens the snapshot's bytes. No
// token or traffic quota applies here. A link whose source file was since
// evicted redeems but finds no bytes; that surfaces as not-found.
func (s *FileService) RedeemShare(shareID string) (*core.StoredFile, io.ReadCloser, error) {
	snap, err := s.shares.Redeem(shareID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Open(snap.StoragePath)
	if err != nil {
		slog.Warn("share link target missing on disk", "share_id", shareID, "file_id", snap.ID)
		return nil, nil, core.ErrShareNotFound
	}
	return &snap, rc, nil
}

// keyedMutex serializes uploads per user so concurrent uploads of the
// same new name cannot both insert.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
