// Package archive reads the metadata Xcode stores in an archive bundle's
// Info.plist. It is informational: exports never depend on it.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"howett.net/plist"
)

// ErrNotArchive is returned when path has no Info.plist.
var ErrNotArchive = errors.New("not an Xcode archive")

// Info is the subset of archive metadata shown in logs and reports.
type Info struct {
	Name      string
	Scheme    string
	BundleID  string
	Version   string
	Build     string
	Team      string
	CreatedAt time.Time
}

// Label returns "bundle.id 1.2 (34)" with whatever parts are known.
func (i *Info) Label() string {
	if i == nil {
		return ""
	}
	s := i.BundleID
	if s == "" {
		s = i.Name
	}
	if i.Version != "" {
		s += " " + i.Version
	}
	if i.Build != "" {
		s += " (" + i.Build + ")"
	}
	return s
}

// --- Info.plist wire types ---

type infoPlist struct {
	Name                  string        `plist:"Name"`
	SchemeName            string        `plist:"SchemeName"`
	CreationDate          time.Time     `plist:"CreationDate"`
	ArchiveVersion        int           `plist:"ArchiveVersion"`
	ApplicationProperties appProperties `plist:"ApplicationProperties"`
}

type appProperties struct {
	ApplicationPath string `plist:"ApplicationPath"`
	BundleID        string `plist:"CFBundleIdentifier"`
	ShortVersion    string `plist:"CFBundleShortVersionString"`
	BundleVersion   string `plist:"CFBundleVersion"`
	SigningIdentity string `plist:"SigningIdentity"`
	Team            string `plist:"Team"`
}

// Inspect reads <path>/Info.plist.
func Inspect(path string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(path, "Info.plist"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotArchive, path)
		}
		return nil, err
	}
	return ParsePlist(data)
}

// ParsePlist converts raw Info.plist bytes (XML or binary) into an Info.
// Exported for testing without a real archive.
func ParsePlist(data []byte) (*Info, error) {
	var raw infoPlist
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse archive Info.plist: %w", err)
	}
	return &Info{
		Name:      raw.Name,
		Scheme:    raw.SchemeName,
		BundleID:  raw.ApplicationProperties.BundleID,
		Version:   raw.ApplicationProperties.ShortVersion,
		Build:     raw.ApplicationProperties.BundleVersion,
		Team:      raw.ApplicationProperties.Team,
		CreatedAt: raw.CreationDate,
	}, nil
}
