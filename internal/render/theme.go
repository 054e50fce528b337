package render

import (
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

var detectDarkMode = darkmode.IsDarkMode

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

// resolve turns ThemeAuto into light or dark using the desktop setting.
func (p ThemePreference) resolve() ThemePreference {
	if p != ThemeAuto {
		return p
	}
	if detectDarkMode != nil {
		dark, err := detectDarkMode()
		if err != nil {
			slog.Debug("detect dark-mode", slog.Any("error", err))
		} else if dark {
			return ThemeDark
		}
	}
	return ThemeLight
}

// StyleFor returns the chroma style used to highlight output for pref.
func StyleFor(pref ThemePreference) *chroma.Style {
	name := "github"
	if pref.resolve() == ThemeDark {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}
