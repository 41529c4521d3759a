// Package archive extracts zip and tar bundles.
//
// The archive format is always decided by looking at the file content, never
// at its name. Tar archives may be compressed with gzip, bzip2, xz or zstd.
package archive

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/mozinstall/internal/utils"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrUnsafeMember      = errors.New("archive member escapes the destination")
)

// Extract extracts the zip or tar archive src into destDir and returns the
// top level entries it created.
//
// An empty destDir means the directory containing src. destDir is created
// when missing. If deleteAfter is set, src is removed once the extraction
// succeeded.
func Extract(src, destDir string, deleteAfter bool) ([]string, error) {
	var extract func(x *extractor, src string) ([]string, error)
	switch {
	case IsZip(src):
		extract = (*extractor).extractZip
	case IsTar(src):
		extract = (*extractor).extractTar
	default:
		return nil, fmt.Errorf("%s is neither a zip nor a tar archive: %w", src, ErrUnsupportedFormat)
	}

	if destDir == "" {
		destDir = filepath.Dir(src)
	}
	destDir, err := filepath.Abs(destDir)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot get absolute path of %s", destDir)
	}
	if err := utils.EnsureDir(destDir); err != nil {
		return nil, err
	}

	realDir, err := filepath.EvalSymlinks(destDir)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot resolve %s", destDir)
	}

	slog.Debug("extract archive", "src", src, "to", destDir)

	names, err := extract(&extractor{destDir: destDir, realDir: realDir}, src)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot extract %s", src)
	}

	if deleteAfter {
		if err := os.Remove(src); err != nil {
			return nil, ee.Wrapf(err, "cannot delete %s", src)
		}
	}

	return TopLevelEntries(destDir, names), nil
}

// TopLevelEntries maps archive member names to the paths of the entries
// directly under destDir, in archive order and without duplicates.
//
// Members nested inside a directory the archive never lists on its own
// still contribute their first path segment.
func TopLevelEntries(destDir string, names []string) []string {
	seen := make(map[string]bool, 1)
	entries := make([]string, 0, 1)

	for _, name := range names {
		clean := cleanName(name)
		if clean == "" {
			continue
		}

		first, _, _ := strings.Cut(clean, "/")
		if seen[first] {
			continue
		}
		seen[first] = true

		entries = append(entries, filepath.Join(destDir, filepath.FromSlash(first)))
	}

	return entries
}

// cleanName normalizes a member name to a slash separated relative path,
// "" means the member is the archive root itself
func cleanName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Clean("/" + name)
	name = strings.TrimPrefix(name, "/")
	if name == "." {
		return ""
	}
	return name
}

// targetPath returns where member name lands under destDir. Leading
// slashes and ".." segments are cleaned away so nothing escapes destDir.
func targetPath(destDir, name string) string {
	clean := cleanName(name)
	if clean == "" {
		return destDir
	}
	return filepath.Join(destDir, filepath.FromSlash(clean))
}

// extractor writes archive members below destDir. Member names are cleaned
// by targetPath; every path is also checked against realDir after symlinks
// already extracted are resolved, so a member cannot be written through a
// link that leaves the destination.
type extractor struct {
	destDir string
	realDir string
}

// resolveInside resolves the existing part of p and fails when it lies
// outside realDir
func (x *extractor) resolveInside(p string) (string, error) {
	existing := p
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnsafeMember, p, err)
	}
	if !isInside(x.realDir, resolved) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrUnsafeMember, p, resolved)
	}

	rest, err := filepath.Rel(existing, p)
	if err != nil {
		return "", ee.Wrapf(err, "cannot resolve %s", p)
	}
	return filepath.Join(resolved, rest), nil
}

// mkdirFor creates the parent directory of target inside the destination
func (x *extractor) mkdirFor(target string) error {
	dir := filepath.Dir(target)
	if _, err := x.resolveInside(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ee.Wrapf(err, "cannot create parent dir for %s", target)
	}
	return nil
}

func (x *extractor) mkdir(target string, mode os.FileMode) error {
	if _, err := x.resolveInside(target); err != nil {
		return err
	}
	if err := os.MkdirAll(target, dirPerm(mode)); err != nil {
		return ee.Wrapf(err, "cannot create directory %s", target)
	}
	return nil
}

func (x *extractor) writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := x.mkdirFor(target); err != nil {
		return err
	}

	// never write through a symlink left by an earlier member
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return ee.Wrapf(err, "cannot replace symlink %s", target)
		}
	}

	return writeFile(target, r, filePerm(mode))
}

// symlink creates target -> link. Absolute links and links resolving
// outside the destination are rejected.
func (x *extractor) symlink(link, target string) error {
	if err := x.mkdirFor(target); err != nil {
		return err
	}

	if filepath.IsAbs(link) || path.IsAbs(filepath.ToSlash(link)) {
		return fmt.Errorf("%w: %s links to absolute path %s", ErrUnsafeMember, target, link)
	}

	realParent, err := x.resolveInside(filepath.Dir(target))
	if err != nil {
		return err
	}
	if !isInside(x.realDir, filepath.Join(realParent, filepath.FromSlash(link))) {
		return fmt.Errorf("%w: %s links to %s", ErrUnsafeMember, target, link)
	}

	if err := symlink(link, target); err != nil {
		return err
	}

	// links chained through other links are only caught once resolved
	if resolved, err := filepath.EvalSymlinks(target); err == nil && !isInside(x.realDir, resolved) {
		_ = os.Remove(target)
		return fmt.Errorf("%w: %s resolves to %s", ErrUnsafeMember, target, resolved)
	}

	return nil
}

func (x *extractor) hardlink(linkname, target string) error {
	from := targetPath(x.destDir, linkname)
	if _, err := x.resolveInside(filepath.Dir(from)); err != nil {
		return err
	}
	if err := x.mkdirFor(target); err != nil {
		return err
	}

	_ = os.Remove(target)
	if err := os.Link(from, target); err != nil {
		return ee.Wrapf(err, "cannot create hard link %s", target)
	}
	return nil
}

func (x *extractor) extractZip(src string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, ee.Wrap(err, "cannot open zip file")
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)

		err := x.unzipFile(f)
		if err != nil {
			return nil, ee.Wrapf(err, "cannot extract %s", f.Name)
		}
	}

	return names, nil
}

// unzipFile 处理ZIP文件中的每个文件或目录
func (x *extractor) unzipFile(f *zip.File) error {
	target := targetPath(x.destDir, f.Name)
	mode := f.Mode()

	// create dir
	if f.FileInfo().IsDir() {
		return x.mkdir(target, mode)
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	// symlink: the content is the link target
	if mode&os.ModeSymlink != 0 {
		link, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		return x.symlink(string(link), target)
	}

	// create file
	return x.writeFile(target, rc, mode)
}

func (x *extractor) extractTar(src string) ([]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, ee.Wrap(err, "cannot open tar file")
	}
	defer f.Close()

	r, c, err := decompress(f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	slog.Debug("tar compression", "compression", c.String())

	tr := tar.NewReader(r)
	names := make([]string, 0, 16)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ee.Wrap(err, "cannot read tar header")
		}

		names = append(names, header.Name)

		target := targetPath(x.destDir, header.Name)
		mode := header.FileInfo().Mode()

		switch header.Typeflag {
		case tar.TypeDir:
			err = x.mkdir(target, mode)
		case tar.TypeReg:
			err = x.writeFile(target, tr, mode)
		case tar.TypeSymlink:
			err = x.symlink(header.Linkname, target)
		case tar.TypeLink:
			err = x.hardlink(header.Linkname, target)
		default:
			// devices, fifos, pax globals
			slog.Debug("skip tar member", "name", header.Name, "type", header.Typeflag)
		}
		if err != nil {
			return nil, ee.Wrapf(err, "cannot extract %s", header.Name)
		}
	}

	return names, nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return ee.Wrapf(err, "cannot create file %s", target)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return ee.Wrapf(err, "cannot write file %s", target)
	}
	if err := file.Close(); err != nil {
		return ee.Wrapf(err, "cannot save and close file %s", target)
	}

	// the umask may have masked execute bits away
	if err := os.Chmod(target, perm); err != nil {
		return ee.Wrapf(err, "cannot change mode of %s", target)
	}

	return nil
}

func symlink(link, target string) error {
	_ = os.Remove(target)

	err := os.Symlink(link, target)
	if err != nil {
		return ee.Wrapf(err, "cannot create symlink %s -> %s", target, link)
	}
	return nil
}

func isInside(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func filePerm(mode os.FileMode) os.FileMode {
	perm := mode.Perm()
	if perm == 0 {
		return 0644
	}
	return perm | 0200
}

func dirPerm(mode os.FileMode) os.FileMode {
	return mode.Perm() | 0700
}
