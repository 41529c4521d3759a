package version

import (
	"fmt"
	"strings"
)

// set by -ldflags "-X github.com/ImSingee/mozinstall/internal/version.version=..."
var (
	version = "DEV"
	commit  = ""
	buildAt = ""
)

// GetVersionString is the text printed by `mozinstall --version`
func GetVersionString() string {
	b := strings.Builder{}
	b.WriteString(version)
	if commit != "" {
		fmt.Fprintf(&b, "\nCommit: %s", commit)
	}
	if buildAt != "" {
		fmt.Fprintf(&b, "\nBuild At: %s", buildAt)
	}
	return b.String()
}
