// Package testutil builds zip and tar fixtures for tests.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// Entry is one archive member. Names ending in "/" are directories.
type Entry struct {
	Name string
	Body string
	Mode os.FileMode // 0 means 0644 for files and 0755 for directories
	Link string      // symlink target, makes the entry a symlink
}

func (e Entry) isDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

func (e Entry) mode() os.FileMode {
	if e.Mode != 0 {
		return e.Mode
	}
	if e.isDir() {
		return 0755
	}
	return 0644
}

// FirefoxEntries is a minimal Linux Firefox layout
var FirefoxEntries = []Entry{
	{Name: "firefox/"},
	{Name: "firefox/firefox", Body: "#!/bin/sh\necho firefox\n", Mode: 0755},
	{Name: "firefox/libxul.so", Body: "ELF"},
	{Name: "firefox/browser/"},
	{Name: "firefox/browser/omni.ja", Body: "omni"},
}

// WriteZip writes entries as a zip archive at path
func WriteZip(t *testing.T, path string, entries []Entry) string {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	w := zip.NewWriter(f)
	for _, e := range entries {
		header := &zip.FileHeader{
			Name:   e.Name,
			Method: zip.Deflate,
		}

		mode := e.mode()
		switch {
		case e.Link != "":
			mode = os.ModeSymlink | 0777
		case e.isDir():
			mode |= os.ModeDir
		}
		header.SetMode(mode)

		fw, err := w.CreateHeader(header)
		require.NoError(t, err)

		switch {
		case e.Link != "":
			_, err = io.WriteString(fw, e.Link)
		case !e.isDir():
			_, err = io.WriteString(fw, e.Body)
		}
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

// WriteTar writes entries as a tar archive at path. compression is one of
// "", "gz", "xz" or "zst".
func WriteTar(t *testing.T, path string, compression string, entries []Entry) string {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var out io.WriteCloser
	switch compression {
	case "":
		out = nopWriteCloser{f}
	case "gz":
		out = gzip.NewWriter(f)
	case "xz":
		out, err = xz.NewWriter(f)
		require.NoError(t, err)
	case "zst":
		out, err = zstd.NewWriter(f)
		require.NoError(t, err)
	default:
		t.Fatalf("unknown compression %q", compression)
	}

	tw := tar.NewWriter(out)
	for _, e := range entries {
		header := &tar.Header{
			Name: e.Name,
			Mode: int64(e.mode().Perm()),
		}

		switch {
		case e.Link != "":
			header.Typeflag = tar.TypeSymlink
			header.Linkname = e.Link
		case e.isDir():
			header.Typeflag = tar.TypeDir
		default:
			header.Typeflag = tar.TypeReg
			header.Size = int64(len(e.Body))
		}

		require.NoError(t, tw.WriteHeader(header))
		if header.Typeflag == tar.TypeReg {
			_, err := io.WriteString(tw, e.Body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, out.Close())

	return path
}

// WriteFile writes a plain file at dir/name and returns its path
func WriteFile(t *testing.T, dir, name, body string, mode os.FileMode) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(body), mode))
	require.NoError(t, os.Chmod(p, mode))

	return p
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
