package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/shovelbot/shovel/domain"
)

// FileStore keeps user tokens in a single JSON file, a flat object of
// stringified user id to token. The whole file is rewritten on every
// mutation; a mutex serializes writers so concurrent registrations
// cannot lose each other's updates.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ domain.CredentialStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(userID int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	token, ok := data[strconv.FormatInt(userID, 10)]
	return token, ok, nil
}

func (s *FileStore) Set(userID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data[strconv.FormatInt(userID, 10)] = token
	return s.save(data)
}

func (s *FileStore) Delete(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	delete(data, strconv.FormatInt(userID, 10))
	return s.save(data)
}

func (s *FileStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// load reads the whole token map. A missing file is an empty map.
func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading credential store: %w", err)
	}
	data := map[string]string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decoding credential store: %w", err)
		}
	}
	return data, nil
}

func (s *FileStore) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding credential store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing credential store: %w", err)
	}
	return nil
}
