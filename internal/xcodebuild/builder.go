package xcodebuild

import (
	"errors"
	"fmt"
	"os"

	"mvdan.cc/sh/v3/shell"

	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/export"
)

// ErrEmptyDelegate is returned when the delegate command has no words.
var ErrEmptyDelegate = errors.New("delegate command is empty")

// DelegateWords splits the configured delegate command with shell quoting
// rules, so "xcrun xcodebuild" or a quoted path with spaces both work.
func DelegateWords(delegate string) ([]string, error) {
	words, err := shell.Fields(delegate, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("parse delegate %q: %w", delegate, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyDelegate
	}
	return words, nil
}

// Build constructs the complete delegate argument slice for a job:
//
//	<delegate…> -exportArchive -archivePath <src> -exportPath <dest>
//	            -exportOptionsPlist <plist> [-allowProvisioningUpdates]
func Build(cfg *config.Config, job export.Job, plistPath string) ([]string, error) {
	words, err := DelegateWords(cfg.Delegate)
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(words)+8)
	args = append(args, words...)
	args = append(args,
		"-exportArchive",
		"-archivePath", job.SourcePath,
		"-exportPath", job.DestinationDir,
		"-exportOptionsPlist", plistPath,
	)
	if cfg.AllowProvisioningUpdates {
		args = append(args, "-allowProvisioningUpdates")
	}
	return args, nil
}
