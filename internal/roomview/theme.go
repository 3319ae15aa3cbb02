package roomview

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
)

type Theme string

const (
	ThemeDark   Theme = "dark"
	ThemeLight  Theme = "light"
	ThemeGolden Theme = "golden"
	ThemeSonali Theme = "sonali"
)

var themeOrder = []Theme{ThemeDark, ThemeLight, ThemeGolden, ThemeSonali}

// Next cycles dark -> light -> golden -> sonali and wraps. Anything
// unrecognized restarts at dark.
func (t Theme) Next() Theme {
	for i, known := range themeOrder {
		if known == t {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return ThemeDark
}

func (t Theme) valid() bool {
	for _, known := range themeOrder {
		if known == t {
			return true
		}
	}
	return false
}

// Palette maps a theme to terminal styles.
type Palette struct {
	Content color.Style
	Meta    color.Style
	Preview color.Style
}

func (t Theme) Palette() Palette {
	switch t {
	case ThemeLight:
		return Palette{
			Content: color.New(color.FgBlack),
			Meta:    color.New(color.FgBlue),
			Preview: color.New(color.FgCyan),
		}
	case ThemeGolden:
		return Palette{
			Content: color.New(color.FgYellow, color.Bold),
			Meta:    color.New(color.FgYellow),
			Preview: color.New(color.FgLightYellow),
		}
	case ThemeSonali:
		return Palette{
			Content: color.New(color.FgLightYellow, color.Bold),
			Meta:    color.New(color.FgLightMagenta),
			Preview: color.New(color.FgLightCyan),
		}
	default:
		return Palette{
			Content: color.New(color.FgWhite),
			Meta:    color.New(color.FgGray),
			Preview: color.New(color.FgCyan),
		}
	}
}

// ThemeStore persists the selected theme across restarts. One value, one
// file; losing it costs nothing but the default theme.
type ThemeStore struct {
	path string
}

func NewThemeStore(path string) *ThemeStore {
	return &ThemeStore{path: path}
}

// Load returns the persisted theme, or dark when nothing valid is stored.
func (s *ThemeStore) Load() Theme {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return ThemeDark
	}

	theme := Theme(strings.TrimSpace(string(raw)))
	if !theme.valid() {
		return ThemeDark
	}
	return theme
}

func (s *ThemeStore) Save(t Theme) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(string(t)+"\n"), 0o644)
}
