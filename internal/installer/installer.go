package installer

import (
	"context"
	"errors"

	"github.com/ImSingee/mozinstall/internal/archive"
	"github.com/ImSingee/mozinstall/internal/lib/proc"
	"github.com/ImSingee/mozinstall/internal/platform"
)

var (
	ErrInvalidSource     = errors.New("invalid source")
	ErrUnsupportedFormat = archive.ErrUnsupportedFormat
	ErrMountFailure      = errors.New("cannot mount disk image")
	ErrAppBundleNotFound = errors.New("no .app bundle found in disk image")
	ErrInstallerFailed   = errors.New("installer failed")
	ErrBinaryNotFound    = errors.New("binary not found")
)

var ErrInstallerNotApplicable = errors.New("installer is not available")

type Options struct {
	Platform platform.Platform
	Runner   proc.Runner

	// InstallerArgs are passed to installer executables before the
	// silent install flags
	InstallerArgs []string

	// DeleteArchive removes zip/tar sources after a successful extraction
	DeleteArchive bool
}

type Factory interface {
	// Format returns the source format the installer handles
	Format() Format

	// GetInstaller returns the installer if it's available
	//
	// If the installer is not available on the platform, it returns
	// (nil, ErrInstallerNotApplicable)
	GetInstaller(o *Options) (Installer, error)
}

type Installer interface {
	// Install installs src into dest and returns the directory the
	// application ended up in
	Install(ctx context.Context, src, dest string) (string, error)
}
