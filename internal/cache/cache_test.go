package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenant-dev/covenant"
)

func writeContract(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	path := writeContract(t, dir, "a.yaml", "functions: []")
	concls := []*covenant.Conclusion{{Func: "f", Status: covenant.StatusProved}}
	require.NoError(t, c.Set(path, concls))

	got, ok := c.Get(path)
	require.True(t, ok)
	assert.Equal(t, concls, got)
}

func TestMissReturnsFalse(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	_, ok := c.Get("never/recorded.yaml")
	assert.False(t, ok)
}

func TestChangedFileInvalidatesEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	path := writeContract(t, dir, "a.yaml", "functions: []")
	require.NoError(t, c.Set(path, nil))

	require.NoError(t, os.WriteFile(path, []byte("functions: [] # edited"), 0o644))
	_, ok := c.Get(path)
	assert.False(t, ok)
}

func TestExpiredEntryIsDropped(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	c.SetMaxAge(-1)

	path := writeContract(t, dir, "a.yaml", "functions: []")
	require.NoError(t, c.Set(path, nil))

	_, ok := c.Get(path)
	assert.False(t, ok)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")

	c, err := New(cacheDir)
	require.NoError(t, err)
	path := writeContract(t, dir, "a.yaml", "functions: []")
	require.NoError(t, c.Set(path, []*covenant.Conclusion{{Func: "g", Status: covenant.StatusUnknown}}))

	reopened, err := New(cacheDir)
	require.NoError(t, err)
	got, ok := reopened.Get(path)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "g", got[0].Func)
}

func TestInvalidateAll(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	path := writeContract(t, dir, "a.yaml", "functions: []")
	require.NoError(t, c.Set(path, nil))
	c.InvalidateAll()

	_, ok := c.Get(path)
	assert.False(t, ok)
}
