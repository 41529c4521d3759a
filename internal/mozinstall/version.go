package mozinstall

import (
	"path/filepath"
	"regexp"

	"github.com/ImSingee/semver"
)

var versionCandidate = regexp.MustCompile(`\d+(?:\.\d+){1,2}`)

// VersionOf guesses the application version from the source file name,
// e.g. "firefox-99.0.1.tar.bz2" gives "99.0.1". It returns "" when the
// name carries no version.
func VersionOf(src string) string {
	for _, candidate := range versionCandidate.FindAllString(filepath.Base(src), -1) {
		if v, err := semver.NewVersion(candidate); err == nil && v != nil {
			return v.String()
		}
	}
	return ""
}
