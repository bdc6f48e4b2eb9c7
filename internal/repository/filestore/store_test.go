package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing.json"), "")

	var data map[string]string
	found, err := store.Load(&data)

	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store := New(path, "")

	original := map[string]map[string]string{
		"alice": {"a@gmail.com": "secret"},
	}
	require.NoError(t, store.Save(original))

	var loaded map[string]map[string]string
	found, err := store.Load(&loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, original, loaded)
}

func TestSaveWritesPlainJSONWithoutPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store := New(path, "")

	require.NoError(t, store.Save(map[string]string{"k": "v"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var data map[string]string
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "v", data["k"])
}

func TestSaveSealsWithPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store := New(path, "hunter2")

	require.NoError(t, store.Save(map[string]string{"k": "v"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	// The on-disk blob is a sealed envelope, not the plain payload
	var sealed map[string]any
	require.NoError(t, json.Unmarshal(raw, &sealed))
	assert.Contains(t, sealed, "salt")
	assert.Contains(t, sealed, "data")
	assert.NotContains(t, sealed, "k")

	var loaded map[string]string
	found, err := store.Load(&loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", loaded["k"])
}

func TestLoadSealedWithWrongPassphraseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, New(path, "right").Save(map[string]string{"k": "v"}))

	var loaded map[string]string
	_, err := New(path, "wrong").Load(&loaded)
	assert.Error(t, err)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	store := New(path, "")

	require.NoError(t, store.Save(map[string]string{"version": "1"}))
	require.NoError(t, store.Save(map[string]string{"version": "2"}))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	var loaded map[string]string
	_, err = store.Load(&loaded)
	require.NoError(t, err)
	assert.Equal(t, "2", loaded["version"])
}
