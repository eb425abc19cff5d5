package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "identity.json")
}

func TestDeriveIsDeterministic(t *testing.T) {
	// Normalization: case and surrounding whitespace never matter.
	a := Derive("User@Example.com")
	b := Derive("  user@example.com ")
	assert.Equal(t, a, b)

	assert.NotEqual(t, Derive("one@example.com"), Derive("two@example.com"))
	assert.True(t, strings.HasPrefix(a, "user_"))
}

func TestFirstRunGeneratesAndPersists(t *testing.T) {
	path := statePath(t)

	s, err := Open(path)
	require.NoError(t, err)
	id := s.Active()
	assert.True(t, strings.HasPrefix(id, "user_"))
	assert.Empty(t, s.Email())

	// A second open resolves to the same persisted identity.
	s2, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, id, s2.Active())
}

func TestSetFromEmailConvergesAcrossDevices(t *testing.T) {
	s1, err := Open(statePath(t))
	require.NoError(t, err)
	s2, err := Open(statePath(t))
	require.NoError(t, err)
	require.NotEqual(t, s1.Active(), s2.Active())

	id1, err := s1.SetFromEmail("Pat@Example.com")
	require.NoError(t, err)
	id2, err := s2.SetFromEmail("  pat@example.com")
	require.NoError(t, err)

	// Two devices, same email, same clip set.
	assert.Equal(t, id1, id2)
	assert.Equal(t, "pat@example.com", s1.Email())
}

func TestSavedEmailWinsOverSavedID(t *testing.T) {
	path := statePath(t)
	raw, err := json.Marshal(state{UserID: "user_stale", Email: "Pat@Example.com"})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, Derive("pat@example.com"), s.Active())
	assert.NotEqual(t, "user_stale", s.Active())
}

func TestSavedIDUsedWhenNoEmail(t *testing.T) {
	path := statePath(t)
	raw, err := json.Marshal(state{UserID: "user_abc123"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "user_abc123", s.Active())
}

func TestSetOverwritesOutright(t *testing.T) {
	path := statePath(t)
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.SetFromEmail("pat@example.com")
	require.NoError(t, err)

	// Direct entry: no validation, email slot cleared.
	require.NoError(t, s.Set("  user_from_other_device "))
	assert.Equal(t, "user_from_other_device", s.Active())
	assert.Empty(t, s.Email())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "user_from_other_device", s2.Active())
}

func TestEmptyInputsRejected(t *testing.T) {
	s, err := Open(statePath(t))
	require.NoError(t, err)

	_, err = s.SetFromEmail("   ")
	assert.Error(t, err)
	assert.Error(t, s.Set(""))
}

func TestCorruptStateFileFails(t *testing.T) {
	path := statePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
