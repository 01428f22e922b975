// Package term resolves the color mode into a terminal color profile and
// provides TTY detection.
//
// [Configure] is called once during startup (from [logging.NewLogger]); it
// applies the profile to the default lipgloss renderer so every style in
// the display package honors --color and NO_COLOR.
package term

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/backmassage/arc2ipa/internal/config"
)

// Configure resolves the color mode against f and installs the resulting
// profile on the default lipgloss renderer. It returns the profile so
// loggers writing to f can use the same one.
func Configure(mode config.ColorMode, f *os.File) termenv.Profile {
	p := Profile(mode, f)
	lipgloss.SetColorProfile(p)
	return p
}

// Profile determines the color profile based on the configured mode, TTY
// detection, and the NO_COLOR env var (https://no-color.org).
func Profile(mode config.ColorMode, f *os.File) termenv.Profile {
	switch mode {
	case config.ColorAlways:
		if p := termenv.NewOutput(f).EnvColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	case config.ColorNever:
		return termenv.Ascii
	default: // ColorAuto
		if !IsTerminal(f) ||
			os.Getenv("NO_COLOR") != "" ||
			strings.ToLower(os.Getenv("TERM")) == "dumb" {
			return termenv.Ascii
		}
		return termenv.NewOutput(f).EnvColorProfile()
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
