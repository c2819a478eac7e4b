package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	workspacePattern            = "dirindex-sessions-*"
	sessionDirectoryPermissions = 0o700

	errorWorkspaceFormat        = "create session workspace: %w"
	errorSessionDirectoryFormat = "create session directory %s: %w"
)

// ErrSessionNotFound is returned for unknown or expired session identifiers.
var ErrSessionNotFound = errors.New("session not found")

// Record describes the files produced for one web request.
type Record struct {
	ID              string
	RootPath        string
	OutputDirectory string
	Files           map[string]string
	ItemCount       int
	CreatedAt       time.Time
}

// Store keeps generated sessions on disk under a private workspace and forgets
// them after a time-to-live.
type Store struct {
	mutex     sync.Mutex
	workspace string
	ttl       time.Duration
	records   map[string]Record
	now       func() time.Time
}

// NewStore creates a store whose sessions live below a fresh directory inside
// parentDirectory (the system temporary directory when empty).
func NewStore(parentDirectory string, ttl time.Duration) (*Store, error) {
	workspace, workspaceError := os.MkdirTemp(parentDirectory, workspacePattern)
	if workspaceError != nil {
		return nil, fmt.Errorf(errorWorkspaceFormat, workspaceError)
	}
	return &Store{
		workspace: workspace,
		ttl:       ttl,
		records:   map[string]Record{},
		now:       time.Now,
	}, nil
}

// Workspace returns the directory holding all session folders.
func (store *Store) Workspace() string {
	return store.workspace
}

// Reserve allocates a new session identifier and its private output directory.
func (store *Store) Reserve() (string, string, error) {
	sessionID := uuid.NewString()
	sessionDirectory := filepath.Join(store.workspace, sessionID)
	if makeDirectoryError := os.MkdirAll(sessionDirectory, sessionDirectoryPermissions); makeDirectoryError != nil {
		return "", "", fmt.Errorf(errorSessionDirectoryFormat, sessionDirectory, makeDirectoryError)
	}
	return sessionID, sessionDirectory, nil
}

// Save records a completed session.
func (store *Store) Save(record Record) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = store.now()
	}
	store.records[record.ID] = record
}

// Lookup returns the session with the given identifier unless it has expired.
func (store *Store) Lookup(sessionID string) (Record, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	record, found := store.records[sessionID]
	if !found || store.expired(record) {
		return Record{}, ErrSessionNotFound
	}
	return record, nil
}

// Discard forgets a session and deletes its files.
func (store *Store) Discard(sessionID string) error {
	store.mutex.Lock()
	delete(store.records, sessionID)
	store.mutex.Unlock()
	return os.RemoveAll(filepath.Join(store.workspace, sessionID))
}

// Evict removes every expired session and returns how many were removed.
func (store *Store) Evict() (int, error) {
	store.mutex.Lock()
	var expiredIDs []string
	for sessionID, record := range store.records {
		if store.expired(record) {
			expiredIDs = append(expiredIDs, sessionID)
			delete(store.records, sessionID)
		}
	}
	store.mutex.Unlock()

	var removalErrors []error
	for _, sessionID := range expiredIDs {
		if removeError := os.RemoveAll(filepath.Join(store.workspace, sessionID)); removeError != nil {
			removalErrors = append(removalErrors, removeError)
		}
	}
	return len(expiredIDs), errors.Join(removalErrors...)
}

// Len reports the number of live sessions.
func (store *Store) Len() int {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return len(store.records)
}

// Close forgets every session and deletes the workspace.
func (store *Store) Close() error {
	store.mutex.Lock()
	store.records = map[string]Record{}
	store.mutex.Unlock()
	return os.RemoveAll(store.workspace)
}

func (store *Store) expired(record Record) bool {
	return store.ttl > 0 && store.now().Sub(record.CreatedAt) >= store.ttl
}
