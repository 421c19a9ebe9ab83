package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/jamming/internal/shared"
)

func TestFileVerifierStore(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state")
		store := NewFileVerifierStore(dir)

		v, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error loading empty store, got %v", err)
		}
		if v != "" {
			t.Errorf("expected empty verifier, got %q", v)
		}

		if err := store.Save("verifier-one"); err != nil {
			t.Fatalf("failed to save verifier: %v", err)
		}
		if err := store.Save("verifier-two"); err != nil {
			t.Fatalf("failed to overwrite verifier: %v", err)
		}

		v, err = store.Load()
		if err != nil {
			t.Fatalf("failed to load verifier: %v", err)
		}
		if v != "verifier-two" {
			t.Errorf("expected overwritten verifier, got %q", v)
		}

		if err := store.Delete(); err != nil {
			t.Fatalf("failed to delete verifier: %v", err)
		}
		if err := store.Delete(); err != nil {
			t.Errorf("deleting a missing verifier should succeed, got %v", err)
		}
		if v, _ := store.Load(); v != "" {
			t.Errorf("expected verifier to be gone, got %q", v)
		}
	})

	t.Run("Permissions", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state")
		store := NewFileVerifierStore(dir)
		if err := store.Save("secret"); err != nil {
			t.Fatalf("failed to save verifier: %v", err)
		}

		info, err := os.Stat(store.Path())
		if err != nil {
			t.Fatalf("failed to stat verifier file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("expected mode 0600, got %o", perm)
		}
		if filepath.Base(store.Path()) != VerifierKey {
			t.Errorf("expected file named %s, got %s", VerifierKey, store.Path())
		}
	})

	t.Run("Unwritable Directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "not-a-dir")
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatal(err)
		}

		store := NewFileVerifierStore(file)
		err := store.Save("secret")
		if !errors.Is(err, shared.ErrVerifierStorage) {
			t.Errorf("expected ErrVerifierStorage, got %v", err)
		}
	})
}

func TestMemoryVerifierStore(t *testing.T) {
	store := &MemoryVerifierStore{}
	if err := store.Save("abc"); err != nil {
		t.Fatal(err)
	}
	if v, _ := store.Load(); v != "abc" {
		t.Errorf("expected abc, got %q", v)
	}
	if err := store.Delete(); err != nil {
		t.Fatal(err)
	}
	if v, _ := store.Load(); v != "" {
		t.Errorf("expected empty verifier after delete, got %q", v)
	}
}
