package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storysift/storysift-cli/internal/core/domain"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".storysift", "config.toml"), store.Path())
}

func TestConfigStore_LoadDefaultsWhenMissing(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultExtractionConfig(), cfg)
}

func TestConfigStore_SaveAndLoad(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg := domain.DefaultExtractionConfig()
	cfg.MinTextLength = 4
	cfg.MaxParallelism = 2
	cfg.Keywords = []string{"dialogue", "セリフ"}
	cfg.PrioritizeCJKText = true
	require.NoError(t, store.Save(cfg))

	loaded, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, 4, loaded.MinTextLength)
	assert.Equal(t, 2, loaded.MaxParallelism)
	assert.Equal(t, []string{"dialogue", "セリフ"}, loaded.Keywords)
	assert.True(t, loaded.PrioritizeCJKText)
}

func TestConfigStore_LoadNormalisesValues(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	raw := []byte("min_text_length = -5\nmax_parallelism = 0\n")
	require.NoError(t, os.WriteFile(store.Path(), raw, 0600))

	loaded, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMinTextLength, loaded.MinTextLength)
	assert.Equal(t, domain.DefaultMaxParallelism, loaded.MaxParallelism)
}

func TestConfigStore_LoadMalformedFile(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not = [valid"), 0600))

	_, err = store.Load()

	assert.Error(t, err)
}

func TestConfigStore_SavePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(domain.DefaultExtractionConfig()))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
