package installer

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/ImSingee/mozinstall/internal/archive"
	"github.com/ImSingee/mozinstall/internal/platform"
	"github.com/ImSingee/mozinstall/internal/utils"
)

// Format is the kind of installation source
type Format uint8

const (
	Unsupported Format = iota
	Zip
	Tar
	Dmg
	WindowsExe
)

func (f Format) String() string {
	switch f {
	case Zip:
		return "zip"
	case Tar:
		return "tar"
	case Dmg:
		return "dmg"
	case WindowsExe:
		return "exe"
	default:
		return "unsupported"
	}
}

// DetectFormat sniffs src in fixed priority order: zip, tar, dmg (macOS
// only, by extension), executable (Windows only, must start with the DOS
// "MZ" header).
func DetectFormat(src string, p platform.Platform) Format {
	switch {
	case archive.IsZip(src):
		return Zip
	case archive.IsTar(src):
		return Tar
	case p.IsMac() && strings.HasSuffix(strings.ToLower(src), ".dmg"):
		return Dmg
	case p.IsWindows() && utils.IsExecutableFile(src, p) && hasExeHeader(src):
		return WindowsExe
	default:
		return Unsupported
	}
}

var exeMagic = []byte("MZ")

func hasExeHeader(src string) bool {
	f, err := os.Open(src)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(exeMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, exeMagic)
}
