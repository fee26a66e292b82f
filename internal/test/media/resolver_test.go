package media_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sti-backend/internal/media"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "AZ-9990", media.SanitizeKey("AZ-9990"))
	assert.Equal(t, "a_b_c.jpg", media.SanitizeKey("a b/c.jpg"))
	assert.Equal(t, "___", media.SanitizeKey("€ä%"))
}

func TestEffectiveKey_TruncatesAtComma(t *testing.T) {
	assert.Equal(t, "AZ-9990", media.EffectiveKey("AZ-9990,extra,more"))
	assert.Equal(t, "plain", media.EffectiveKey("plain"))
	assert.Equal(t, "", media.EffectiveKey(",leading"))
}

func TestResolver_BaselineProbesExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "baseline", "AZ-1.webp"))

	r := media.NewResolver(root)

	abs, ok := r.ResolveBaseline("AZ-1", "")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "baseline", "AZ-1.webp"), abs)

	_, ok = r.ResolveBaseline("AZ-2", "")
	assert.False(t, ok)
}

func TestResolver_StoredPathPreferred(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "baseline", "custom.png"))
	writeFile(t, filepath.Join(root, "baseline", "AZ-1.jpg"))

	r := media.NewResolver(root)

	// Stored path wins over the probe when the file exists.
	abs, ok := r.ResolveBaseline("AZ-1", "baseline/custom.png")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "baseline", "custom.png"), abs)

	// A stale stored path falls back to the probe.
	abs, ok = r.ResolveBaseline("AZ-1", "baseline/gone.png")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "baseline", "AZ-1.jpg"), abs)
}

func TestResolver_StoredPathMediaPrefix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "inspections", "AZ-1", "42.jpg"))

	r := media.NewResolver(root)

	// Thermal paths were historically stored with a leading media/ segment.
	abs, ok := r.ResolveThermal("AZ-1", "42", "media/inspections/AZ-1/42.jpg")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "inspections", "AZ-1", "42.jpg"), abs)

	// And the same file resolves without it.
	abs, ok = r.ResolveThermal("AZ-1", "42", "inspections/AZ-1/42.jpg")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "inspections", "AZ-1", "42.jpg"), abs)
}

func TestResolver_ThermalCommaKey(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "inspections", "AZ-1", "42.png"))

	r := media.NewResolver(root)

	abs, ok := r.ResolveThermal("AZ-1,legacy-suffix", "42", "")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "inspections", "AZ-1", "42.png"), abs)
}

func TestResolver_PublicURL(t *testing.T) {
	root := t.TempDir()
	r := media.NewResolver(root)

	abs := filepath.Join(root, "baseline", "AZ-1.jpg")
	assert.Equal(t, "/media/baseline/AZ-1.jpg", r.PublicURL(abs))
	assert.Equal(t, "", r.PublicURL("/somewhere/else.jpg"))
}

func TestExtForUpload(t *testing.T) {
	assert.Equal(t, "png", media.ExtForUpload("photo.PNG", "", "bin"))
	assert.Equal(t, "jpg", media.ExtForUpload("noext", "image/jpeg", "bin"))
	assert.Equal(t, "tiff", media.ExtForUpload("", "image/tif", "bin"))
	assert.Equal(t, "bin", media.ExtForUpload("", "application/pdf", "bin"))
	assert.Equal(t, "jpg", media.ExtForUpload("", "image/jpeg; charset=binary", "bin"))
}

func TestAllowedThermalExt(t *testing.T) {
	for _, ext := range []string{"jpg", "jpeg", "png", "webp"} {
		assert.True(t, media.AllowedThermalExt(ext), ext)
	}
	assert.False(t, media.AllowedThermalExt("gif"))
	assert.False(t, media.AllowedThermalExt("bin"))
}
