package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/arc2ipa/internal/naming"
)

// Discover walks inputDir and collects every entry whose extension is
// .xcarchive (case-insensitive). Archives are bundles, so matched
// directories are not descended into. Paths are returned sorted
// lexicographically for deterministic processing order.
func Discover(inputDir string) ([]string, error) {
	var archives []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == inputDir {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), naming.ArchiveExt) {
			return nil
		}
		archives = append(archives, path)
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(archives)
	return archives, nil
}
