package media_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sti-backend/internal/media"
)

func TestStore_SaveThermal(t *testing.T) {
	root := t.TempDir()
	s := media.NewStore(root)

	stored, err := s.SaveThermal("AZ-1", "inspection-42", "jpg", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "media/inspections/AZ-1/inspection-42.jpg", stored)

	data, err := os.ReadFile(filepath.Join(root, "inspections", "AZ-1", "inspection-42.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Re-upload overwrites.
	_, err = s.SaveThermal("AZ-1", "inspection-42", "jpg", strings.NewReader("second"))
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(root, "inspections", "AZ-1", "inspection-42.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestStore_SaveBaseline(t *testing.T) {
	root := t.TempDir()
	s := media.NewStore(root)

	stored, err := s.SaveBaseline("AZ 9/9", "png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "baseline/AZ_9_9.png", stored)

	_, err = os.Stat(filepath.Join(root, "baseline", "AZ_9_9.png"))
	assert.NoError(t, err)
}

func TestRemoveFiles_PrunesEmptyParents(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "inspections", "AZ-1", "42.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("img"), 0o644))

	results := media.RemoveFiles(root, []string{target})
	require.Len(t, results, 1)
	assert.True(t, results[0].Removed)
	assert.NoError(t, results[0].Err)

	// The now-empty per-transformer directory is pruned, the root stays.
	_, err := os.Stat(filepath.Join(root, "inspections", "AZ-1"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(root)
	assert.NoError(t, err)
}

func TestRemoveFiles_MissingFileIsNotAnError(t *testing.T) {
	root := t.TempDir()

	results := media.RemoveFiles(root, []string{filepath.Join(root, "nope.jpg")})
	require.Len(t, results, 1)
	assert.False(t, results[0].Removed)
	assert.NoError(t, results[0].Err)
}
