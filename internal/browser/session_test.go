package browser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Headless)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
}

func TestReleaseRemovesProfileDir(t *testing.T) {
	profileDir := filepath.Join(t.TempDir(), "profile")
	require.NoError(t, os.MkdirAll(profileDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(profileDir, "Lock"), []byte("x"), 0o644))

	s := &Session{profileDir: profileDir, logger: testLogger()}
	s.Release()

	_, err := os.Stat(profileDir)
	assert.True(t, os.IsNotExist(err), "profile directory should be removed")
}

func TestReleaseIsIdempotent(t *testing.T) {
	profileDir := t.TempDir()

	s := &Session{profileDir: profileDir, logger: testLogger()}
	s.Release()
	assert.NotPanics(t, func() { s.Release() })
}
