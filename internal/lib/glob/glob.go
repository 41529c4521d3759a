package glob

import (
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/gobwas/glob"
)

type Glob = glob.Glob

func Compile(pattern string) (Glob, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, ee.Wrapf(err, "invalid glob pattern %s", pattern)
	}
	return g, nil
}

// Match reports whether name matches g. Patterns without a slash are
// matched against the base name only.
func Match(pattern string, g Glob, name string) bool {
	if strings.Contains(pattern, "/") {
		return g.Match(filepath.ToSlash(name))
	} else {
		return g.Match(filepath.Base(name))
	}
}

// First returns the first of names matching pattern
func First(pattern string, names []string) (string, bool, error) {
	g, err := Compile(pattern)
	if err != nil {
		return "", false, err
	}

	for _, name := range names {
		if Match(pattern, g, name) {
			return name, true, nil
		}
	}

	return "", false, nil
}
