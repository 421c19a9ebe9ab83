package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/jamming/internal/shared"
)

// VerifierKey names the persisted code verifier.
const VerifierKey = "code_verifier"

// VerifierStore persists the code verifier between starting an authorization and exchanging its code.
//
// Load returns an empty string and no error when nothing is stored.
type VerifierStore interface {
	Load() (string, error)
	Save(verifier string) error
	Delete() error
}

// FileVerifierStore keeps the verifier in a single 0600 file under a state directory.
type FileVerifierStore struct {
	dir string
}

func NewFileVerifierStore(dir string) *FileVerifierStore {
	return &FileVerifierStore{dir: dir}
}

// Path returns the location of the verifier file.
func (s *FileVerifierStore) Path() string {
	return filepath.Join(s.dir, VerifierKey)
}

func (s *FileVerifierStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrVerifierStorage, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileVerifierStore) Save(verifier string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("%w: failed to create state directory: %w", shared.ErrVerifierStorage, err)
	}
	if err := os.WriteFile(s.Path(), []byte(verifier), 0o600); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrVerifierStorage, err)
	}
	return nil
}

func (s *FileVerifierStore) Delete() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", shared.ErrVerifierStorage, err)
	}
	return nil
}

// MemoryVerifierStore keeps the verifier in memory; it does not survive the process.
type MemoryVerifierStore struct {
	mu       sync.Mutex
	verifier string
}

func (s *MemoryVerifierStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifier, nil
}

func (s *MemoryVerifierStore) Save(verifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = verifier
	return nil
}

func (s *MemoryVerifierStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = ""
	return nil
}
