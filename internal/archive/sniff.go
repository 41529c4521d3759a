package archive

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"
	"os"

	"github.com/ImSingee/go-ex/ee"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXz
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXz:
		return "xz"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicBzip2 = []byte("BZh")
	magicXz    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// SniffCompression guesses the compression from the leading bytes of a stream
func SniffCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return CompressionGzip
	case bytes.HasPrefix(head, magicBzip2):
		return CompressionBzip2
	case bytes.HasPrefix(head, magicXz):
		return CompressionXz
	case bytes.HasPrefix(head, magicZstd):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// decompress wraps r with the decompressor its magic bytes ask for
func decompress(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(magicXz)) // short streams are fine, they just match nothing

	c := SniffCompression(head)
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, ee.Wrap(err, "cannot create gzip reader")
		}
		return zr, c, nil
	case CompressionBzip2:
		return io.NopCloser(bzip2.NewReader(br)), c, nil
	case CompressionXz:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, c, ee.Wrap(err, "cannot create xz reader")
		}
		return io.NopCloser(xr), c, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, c, ee.Wrap(err, "cannot create zstd reader")
		}
		return zr.IOReadCloser(), c, nil
	default:
		return io.NopCloser(br), c, nil
	}
}

// IsZip reports whether path is a readable zip archive
func IsZip(path string) bool {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}

// IsTar reports whether path is a tar archive, either plain or compressed
// with gzip, bzip2, xz or zstd
func IsTar(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	r, _, err := decompress(f)
	if err != nil {
		return false
	}
	defer r.Close()

	_, err = tar.NewReader(r).Next()
	return err == nil
}
