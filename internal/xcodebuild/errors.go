package xcodebuild

import (
	"regexp"
	"strings"
)

// Pre-compiled patterns for xcodebuild failure output, checked in order by
// [Classify]. The first match wins.
var (
	reExportError = regexp.MustCompile(`(?m)^error: exportArchive:? (.+)$`)

	reSigning = regexp.MustCompile(
		`(?m)^.*(No signing certificate|No certificate for team|` +
			`doesn't include signing certificate|Signing certificate .* not found).*$`)

	reProvisioning = regexp.MustCompile(
		`(?m)^.*(requires a provisioning profile|No profiles for|` +
			`Provisioning profile .* doesn't|No Accounts).*$`)

	reBadArchive = regexp.MustCompile(
		`(?m)^.*(archive at path .* (is not|does not)|` +
			`Couldn't load archive|Archive not found|doesn't exist).*$`)

	reGenericError = regexp.MustCompile(`(?m)^(?:xcodebuild: )?error: (.+)$`)
)

// Classify returns a one-line explanation extracted from delegate output,
// or "" when nothing recognizable is present.
func Classify(output string) string {
	output = strings.ReplaceAll(output, "\r\n", "\n")
	if m := reExportError.FindStringSubmatch(output); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, re := range []*regexp.Regexp{reSigning, reProvisioning, reBadArchive} {
		if m := re.FindString(output); m != "" {
			return strings.TrimSpace(m)
		}
	}
	if m := reGenericError.FindStringSubmatch(output); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
