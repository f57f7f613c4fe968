package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madaris/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.GetPaths(t.TempDir())
	require.NoError(t, err)
	return paths
}

// TestRegistryDegradedWithoutFonts tests the built-in fallback and its
// recorded warnings
func TestRegistryDegradedWithoutFonts(t *testing.T) {
	registry := NewRegistry(testPaths(t))

	warnings := registry.Degraded()
	assert.Len(t, warnings, 2, "both logical fonts degrade")

	for _, logical := range []string{FontArabicRegular, FontArabicBold} {
		font := registry.fonts[logical]
		assert.True(t, font.Builtin)
		assert.Equal(t, builtinFamily, font.Family)
	}
}

// TestRegistryResolvesPreferredFont tests candidate order: Amiri beats
// Cairo when both exist
func TestRegistryResolvesPreferredFont(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.FontsDir, 0o755))
	for _, name := range []string{"Amiri-Regular.ttf", "Cairo-Medium.ttf", "Cairo-Bold.ttf"} {
		require.NoError(t, os.WriteFile(filepath.Join(paths.FontsDir, name), []byte("ttf"), 0o644))
	}

	registry := NewRegistry(paths)

	regular := registry.fonts[FontArabicRegular]
	assert.False(t, regular.Builtin)
	assert.Equal(t, filepath.Join(paths.FontsDir, "Amiri-Regular.ttf"), regular.Path)

	// Bold has no Amiri on disk, so the Cairo fallback wins.
	bold := registry.fonts[FontArabicBold]
	assert.False(t, bold.Builtin)
	assert.Equal(t, filepath.Join(paths.FontsDir, "Cairo-Bold.ttf"), bold.Path)

	assert.Empty(t, registry.Degraded())
}

// TestRegistryImages tests image resolution including the missing and
// unsupported cases
func TestRegistryImages(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.ImagesDir, 0o755))

	registry := NewRegistry(paths)

	t.Run("missing company logo is empty", func(t *testing.T) {
		assert.Empty(t, registry.CompanyLogo())
	})

	t.Run("present company logo resolves", func(t *testing.T) {
		require.NoError(t, os.WriteFile(paths.CompanyLogo, []byte("png"), 0o644))
		assert.Equal(t, paths.CompanyLogo, registry.CompanyLogo())
	})

	t.Run("school logo relative to images dir", func(t *testing.T) {
		logo := filepath.Join(paths.ImagesDir, "school7.png")
		require.NoError(t, os.WriteFile(logo, []byte("png"), 0o644))
		assert.Equal(t, logo, registry.SchoolLogo("school7.png"))
	})

	t.Run("empty school logo path", func(t *testing.T) {
		assert.Empty(t, registry.SchoolLogo(""))
	})

	t.Run("unsupported extension is empty", func(t *testing.T) {
		bmp := filepath.Join(paths.ImagesDir, "old.bmp")
		require.NoError(t, os.WriteFile(bmp, []byte("bmp"), 0o644))
		assert.Empty(t, registry.SchoolLogo("old.bmp"))
	})
}

// TestFileSize tests the diagnostics helper
func TestFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset.png")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))

	assert.Equal(t, int64(5), FileSize(path))
	assert.Zero(t, FileSize(filepath.Join(t.TempDir(), "missing.png")))
}
