package utils

import (
	"os"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"
)

// EnsureDir creates dir (and its parents) if it does not exist yet
func EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return ee.Wrapf(err, "cannot create directory %s", dir)
	}
	return nil
}

// RealPath returns the absolute, symlink-resolved form of path
func RealPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ee.Wrapf(err, "cannot get absolute path of %s", path)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", ee.Wrapf(err, "cannot resolve %s", abs)
	}

	return resolved, nil
}

// IsDir reports whether path is an existing directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
