package naming

import (
	"path/filepath"
	"strings"
)

// ArchiveExt is the extension of an Xcode archive bundle.
const ArchiveExt = ".xcarchive"

// DestinationName returns the directory name for an archive: its base name
// without the .xcarchive extension (matched case-insensitively). Path
// separators never survive, and an empty stem falls back to "archive".
//
//	/in/MyApp.xcarchive            -> MyApp
//	/in/MyApp 2024-05-01.xcarchive -> MyApp 2024-05-01
func DestinationName(archivePath string) string {
	base := filepath.Base(filepath.Clean(archivePath))
	if strings.EqualFold(filepath.Ext(base), ArchiveExt) {
		base = base[:len(base)-len(ArchiveExt)]
	}
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == ".." {
		return "archive"
	}
	return base
}
