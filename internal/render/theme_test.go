package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemePreferenceFromString(t *testing.T) {
	t.Parallel()

	tests := map[string]ThemePreference{
		"dark":    ThemeDark,
		" Light ": ThemeLight,
		"auto":    ThemeAuto,
		"bogus":   ThemeAuto,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ThemePreferenceFromString(raw), raw)
	}
}

// Not parallel: swaps detectDarkMode.
func TestStyleFor(t *testing.T) {
	orig := detectDarkMode
	t.Cleanup(func() { detectDarkMode = orig })

	detectDarkMode = func() (bool, error) { return true, nil }
	assert.Equal(t, "github-dark", StyleFor(ThemeAuto).Name)
	assert.Equal(t, "github", StyleFor(ThemeLight).Name)

	detectDarkMode = func() (bool, error) { return false, nil }
	assert.Equal(t, "github", StyleFor(ThemeAuto).Name)
	assert.Equal(t, "github-dark", StyleFor(ThemeDark).Name)

	detectDarkMode = func() (bool, error) { return true, errors.New("no desktop") }
	assert.Equal(t, "github", StyleFor(ThemeAuto).Name)
}
