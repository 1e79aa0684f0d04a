package session

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// ErrNoCredential indicates no bearer token is currently stored.
var ErrNoCredential = errors.New("session: no stored credential")

// CredentialStore persists the bearer token between runs. It extends the
// gateway's read-side CredentialSource with the write path used at login.
type CredentialStore interface {
	Token() string
	Save(token string) error
	Clear()
}

type storedCredential struct {
	Token string `json:"token"`
}

// FileStore keeps the bearer token in a JSON file under the user's home
// directory so the terminal client stays signed in across invocations.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a credential store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Token reads the stored bearer token, returning "" when absent or unreadable.
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var cred storedCredential
	if err := json.Unmarshal(payload, &cred); err != nil {
		return ""
	}
	return cred.Token
}

// Save writes the bearer token with owner-only permissions.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(storedCredential{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, payload, 0o600)
}

// Clear removes the stored token. A missing file is not an error.
func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.path)
}

// MemoryStore implements CredentialStore for tests and environments
// where no writable home directory is available.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Token returns the held bearer token, "" when none is set.
func (s *MemoryStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Save replaces the held bearer token.
func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear drops the held bearer token.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
