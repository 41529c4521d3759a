package utils

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"
)

func copyFile(from, to string, mode fs.FileMode) error {
	fromF, err := os.Open(from)
	if err != nil {
		return ee.Wrapf(err, "cannot open source file %s", from)
	}
	defer fromF.Close()

	// 存在时报错
	toF, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return ee.Wrapf(err, "cannot open destination file %s", to)
	}
	defer toF.Close()

	_, err = io.Copy(toF, fromF)
	if err != nil {
		return ee.Wrapf(err, "cannot copy data to %s", to)
	}

	err = toF.Close()
	if err != nil {
		return ee.Wrapf(err, "cannot save and close file %s", to)
	}

	// umask may have dropped bits
	err = os.Chmod(to, mode.Perm())
	if err != nil {
		return ee.Wrapf(err, "cannot change mode of %s", to)
	}

	return nil
}

// CopyTree copies the directory from to the path to, which must not exist.
//
// Symlinks are recreated rather than followed, file modes are preserved.
func CopyTree(from, to string) error {
	from = filepath.Clean(from)
	to = filepath.Clean(to)

	if _, err := os.Lstat(to); err == nil {
		return ee.Errorf("cannot copy %s: destination %s already exists", from, to)
	} else if !os.IsNotExist(err) {
		return ee.Wrapf(err, "cannot access %s", to)
	}

	root, err := os.Stat(from)
	if err != nil {
		return ee.Wrapf(err, "cannot stat %s", from)
	}
	if !root.IsDir() {
		return ee.Errorf("cannot copy %s: not a directory", from)
	}

	return filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(from, path)
		if err != nil {
			return ee.Wrapf(err, "cannot get relative path of %s", path)
		}
		target := filepath.Join(to, rel)

		info, err := d.Info()
		if err != nil {
			return ee.Wrapf(err, "cannot stat %s", path)
		}

		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()|0700); err != nil {
				return ee.Wrapf(err, "cannot create directory %s", target)
			}
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return ee.Wrapf(err, "cannot read link %s", path)
			}
			if err := os.Symlink(link, target); err != nil {
				return ee.Wrapf(err, "cannot create symlink %s", target)
			}
		case info.Mode().IsRegular():
			if err := copyFile(path, target, info.Mode()); err != nil {
				return err
			}
		default:
			// sockets, devices: skip
		}

		return nil
	})
}
