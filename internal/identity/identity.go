// Package identity resolves and persists the opaque identifier that scopes
// every persisted clip.
//
// The identifier lives in a small JSON state file (the durable local slots),
// together with the optional normalized email it was derived from. Two
// devices that enter the same email derive the same identifier and therefore
// converge on the same clip set — that is the system's entire device-linking
// mechanism. There is no handshake and no reversal log; setting a new
// identity is a plain overwrite.
package identity

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// state mirrors the on-disk slots.
type state struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"` // normalized
}

// Store resolves and persists the active identity.
type Store struct {
	mu     sync.Mutex
	path   string
	active string
	email  string
}

// DefaultPath returns the state file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "clipbridge", "identity.json"), nil
}

// Open loads (or initializes) the identity store at path. Resolution order:
// identity derived from a previously saved email, then a previously saved
// opaque identity, then a freshly generated one. The resolved value is
// persisted before Open returns.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	var st state
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("identity state %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// first run
	default:
		return nil, fmt.Errorf("identity state %s: %w", path, err)
	}

	switch {
	case st.Email != "":
		s.email = Normalize(st.Email)
		s.active = Derive(s.email)
	case st.UserID != "":
		s.active = st.UserID
	default:
		s.active = generate()
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Active returns the current identity. Callers must re-fetch after any
// SetFromEmail/Set call rather than caching the value indefinitely.
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Email returns the normalized email the identity was derived from, or "".
func (s *Store) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// SetFromEmail derives a deterministic identity from email and makes it the
// active one, persisting both slots.
func (s *Store) SetFromEmail(email string) (string, error) {
	norm := Normalize(email)
	if norm == "" {
		return "", fmt.Errorf("empty email")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = norm
	s.active = Derive(norm)
	if err := s.save(); err != nil {
		return "", err
	}
	return s.active, nil
}

// Set overwrites the active identity with a caller-supplied value. No
// validation is performed: the target identity does not need to exist.
func (s *Store) Set(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("empty identity")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
	s.email = ""
	return s.save()
}

// save writes the slots to disk. Callers hold s.mu (or own s exclusively).
func (s *Store) save() error {
	raw, err := json.MarshalIndent(state{UserID: s.active, Email: s.email}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("identity state dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("identity state %s: %w", s.path, err)
	}
	return nil
}

// Normalize lowercases and trims an email address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Derive maps an email to its identity, normalizing first. Same normalized
// email, same identity, always. SHA-256 keeps accidental collisions out of
// the picture without any coordination between devices.
func Derive(email string) string {
	sum := sha256.Sum256([]byte(Normalize(email)))
	return fmt.Sprintf("user_%x", sum[:16])
}

// generate returns a fresh random identity for first runs.
func generate() string {
	return "user_" + uuid.NewString()
}
