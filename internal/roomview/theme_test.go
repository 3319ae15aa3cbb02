package roomview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheme_NextCycles(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ThemeLight, ThemeDark.Next())
	assert.Equal(t, ThemeGolden, ThemeLight.Next())
	assert.Equal(t, ThemeSonali, ThemeGolden.Next())
	assert.Equal(t, ThemeDark, ThemeSonali.Next())
	assert.Equal(t, ThemeDark, Theme("neon").Next())
}

func TestThemeStore_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "roomctl", "theme")
	store := NewThemeStore(path)

	assert.Equal(t, ThemeDark, store.Load())

	require.NoError(t, store.Save(ThemeGolden))

	// A fresh store reading the same file sees the saved theme, the way a
	// restarted viewer would.
	assert.Equal(t, ThemeGolden, NewThemeStore(path).Load())
}

func TestThemeStore_InvalidContentsFallBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "theme")
	require.NoError(t, os.WriteFile(path, []byte("plaid\n"), 0o644))

	assert.Equal(t, ThemeDark, NewThemeStore(path).Load())
}
