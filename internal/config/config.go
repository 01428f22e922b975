// Package config holds runtime configuration: defaults, layered loading
// (config file, .env, environment, CLI flags), validation, and resolution of
// the input/output directories before any export job runs.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Method is the export method passed to the delegate. It selects the
// signing and distribution channel of the produced package.
type Method string

const (
	MethodDevelopment Method = "development" // Development-signed build (default).
	MethodAdHoc       Method = "ad-hoc"      // Registered-device distribution.
	MethodAppStore    Method = "app-store"   // App Store / TestFlight upload.
	MethodEnterprise  Method = "enterprise"  // In-house enterprise distribution.
)

// Methods lists every accepted export method in display order.
var Methods = []Method{MethodDevelopment, MethodAdHoc, MethodAppStore, MethodEnterprise}

// ExistingPolicy controls what happens when a job's destination directory
// already exists from a previous run.
type ExistingPolicy string

const (
	ExistingOverwrite ExistingPolicy = "overwrite" // Clear the directory, then export into it (default).
	ExistingRename    ExistingPolicy = "rename"    // Leave it alone and allocate the next free name.
)

// SigningStyle mirrors the signingStyle key of ExportOptions.plist.
type SigningStyle string

const (
	SigningAutomatic SigningStyle = "automatic"
	SigningManual    SigningStyle = "manual"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [Load], and then passed (by pointer) to packages that need it.
type Config struct {
	// Paths.
	InputDir  string
	OutputDir string

	// Export settings.
	Method                   Method
	SigningStyle             SigningStyle // Default: "automatic".
	TeamID                   string       // Optional; omitted from the plist when empty.
	AllowProvisioningUpdates bool
	Existing                 ExistingPolicy // Default: "overwrite".

	// Delegate invocation.
	Delegate string        // Default: "xcodebuild". Shell words, e.g. "xcrun xcodebuild".
	Timeout  time.Duration // 0 waits forever.
	UsePTY   bool          // Attach the delegate to a pseudo terminal.

	// Reporting and logging.
	ReportFile string // Optional machine-readable report (.yaml, .toml, .json).
	LogFile    string // Optional log file path (append).
	ColorMode  ColorMode
	Verbose    bool
	CheckOnly  bool // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with the stock defaults:
// ./input, ./output and the development method.
func DefaultConfig() Config {
	return Config{
		InputDir:     "input",
		OutputDir:    "output",
		Method:       MethodDevelopment,
		SigningStyle: SigningAutomatic,
		Existing:     ExistingOverwrite,
		Delegate:     "xcodebuild",
		ColorMode:    ColorAuto,
	}
}

// ParseMethod converts user input into a Method. Matching is
// case-insensitive and surrounding whitespace is ignored.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Methods {
		if m == valid {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q (use %s)", ErrInvalidMethod, s, methodList())
}

func methodList() string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = "'" + string(m) + "'"
	}
	return strings.Join(names, ", ")
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks that enum fields hold valid values and that the numeric
// settings are in range. When not in CheckOnly mode, it also requires that
// both input and output directory paths are non-empty.
func (c *Config) Validate() error {
	m, err := ParseMethod(string(c.Method))
	if err != nil {
		return err
	}
	c.Method = m

	switch c.Existing {
	case ExistingOverwrite, ExistingRename:
		// valid
	default:
		return fmt.Errorf("invalid existing-output policy %q (use 'overwrite' or 'rename')", c.Existing)
	}

	switch c.SigningStyle {
	case SigningAutomatic, SigningManual:
		// valid
	default:
		return fmt.Errorf("invalid signing style %q (use 'automatic' or 'manual')", c.SigningStyle)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if strings.TrimSpace(c.Delegate) == "" {
		return errors.New("delegate command must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need both an input and an output directory")
	}
	return nil
}

// ValidatePaths ensures the resolved input and output directories are
// disjoint: neither may equal or contain the other. An output inside the
// input would be rediscovered on the next run; an input inside the output
// could be picked as a job's destination and cleared. Both arguments must be
// absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	switch {
	case inputAbs == outputAbs:
		return errors.New("output directory must differ from input directory")
	case IsWithin(outputAbs, inputAbs):
		return errors.New("output directory must not be inside input directory")
	case IsWithin(inputAbs, outputAbs):
		return errors.New("input directory must not be inside output directory")
	}
	return nil
}

// IsWithin reports whether path equals dir or lies below it. Both must be
// clean absolute paths.
func IsWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
