package client

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	userIDKey    = "user_id"
	resumeKeyKey = "resume_key"
)

// Store persists small identity values across sessions.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// MemStore keeps values for the lifetime of the process. Used in tests and
// as the degraded mode when no durable storage is available.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// FileStore persists values as a JSON object in a single file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt file is treated as empty rather than wedging identity
		// creation forever.
		return make(map[string]string), nil
	}
	return values, nil
}

// Identity supplies the durable opaque user id for this client. The id is
// generated once and persisted through the injected Store; subsequent calls
// return the same value. When the store fails, the id degrades to a
// per-process value: the participant stays functional but is a new user
// after every restart. It also carries the server-issued resume token.
type Identity struct {
	store Store

	mu       sync.Mutex
	fallback string
}

func NewIdentity(store Store) *Identity {
	return &Identity{store: store}
}

func (i *Identity) UserID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if id, err := i.store.Get(userIDKey); err == nil && id != "" {
		return id
	}
	if i.fallback != "" {
		return i.fallback
	}
	id := newUserID()
	if err := i.store.Set(userIDKey, id); err != nil {
		i.fallback = id
	}
	return id
}

func (i *Identity) ResumeToken() string {
	token, err := i.store.Get(resumeKeyKey)
	if err != nil {
		return ""
	}
	return token
}

func (i *Identity) SetResumeToken(token string) {
	i.store.Set(resumeKeyKey, token)
}

func newUserID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("user_%d_%s", time.Now().UnixMilli(), suffix)
}
