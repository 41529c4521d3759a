// Package locator finds an application's executable inside an install tree.
package locator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/mozinstall/internal/installer"
	"github.com/ImSingee/mozinstall/internal/platform"
	"github.com/ImSingee/mozinstall/internal/utils"
)

var errFound = errors.New("found")

// BinaryName returns the file name of app's executable on p
func BinaryName(app string, p platform.Platform) string {
	suffix := p.ExecutableSuffix()
	if suffix != "" && !strings.HasSuffix(strings.ToLower(app), suffix) {
		return app + suffix
	}
	return app
}

// Locate walks root and returns the resolved absolute path of the first
// executable file named after app.
//
// The execute permission is checked on the walked path itself, so the
// result does not depend on the working directory.
func Locate(root, app string, p platform.Platform) (string, error) {
	name := BinaryName(app, p)

	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// unreadable sub directories are skipped, the walk goes on
			slog.Debug("skip unreadable path", "path", path, "err", err)
			return nil
		}

		if d.IsDir() || d.Name() != name {
			return nil
		}

		// symlinks are followed for the check
		if !utils.IsExecutableFile(path, p) {
			slog.Debug("skip non executable match", "path", path)
			return nil
		}

		found = path
		return errFound
	})

	if err != nil && !errors.Is(err, errFound) {
		return "", ee.Wrapf(err, "cannot walk %s", root)
	}

	if found == "" {
		return "", fmt.Errorf("%w: %s in %s", installer.ErrBinaryNotFound, name, root)
	}

	resolved, err := utils.RealPath(found)
	if err != nil {
		return "", err
	}

	return resolved, nil
}
