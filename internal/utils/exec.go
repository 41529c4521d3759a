package utils

import (
	"io/fs"
	"os"

	"github.com/ImSingee/mozinstall/internal/platform"
)

// IsExecutable reports whether mode describes a file the OS would run.
//
// Windows has no execute bit, any regular file qualifies there.
func IsExecutable(mode fs.FileMode, p platform.Platform) bool {
	if !mode.IsRegular() {
		return false
	}
	if p.IsWindows() {
		return true
	}
	return mode.Perm()&0111 != 0
}

// IsExecutableFile stats path (following symlinks) and calls IsExecutable
func IsExecutableFile(path string, p platform.Platform) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return IsExecutable(info.Mode(), p)
}
