package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

func ParseColorMode(raw string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ColorAuto.String():
		return ColorAuto, nil
	case ColorAlways.String():
		return ColorAlways, nil
	case ColorNever.String():
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unsupported color mode %q (want auto, always or never)", raw)
	}
}

type fdWriter interface {
	Fd() uintptr
}

// Enabled reports whether output written to w should be colored. In auto
// mode only terminals get color, and never when NO_COLOR is set.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
