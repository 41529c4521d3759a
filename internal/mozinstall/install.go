// Package mozinstall installs a downloaded application bundle and locates
// the application's executable inside it.
package mozinstall

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/mozinstall/internal/installer"
	"github.com/ImSingee/mozinstall/internal/installer/impl/archiveinstaller"
	"github.com/ImSingee/mozinstall/internal/installer/impl/dmginstaller"
	"github.com/ImSingee/mozinstall/internal/installer/impl/exeinstaller"
	"github.com/ImSingee/mozinstall/internal/lib/proc"
	"github.com/ImSingee/mozinstall/internal/locator"
	"github.com/ImSingee/mozinstall/internal/platform"
	"github.com/ImSingee/mozinstall/internal/utils"
)

const DefaultApp = "firefox"

type Request struct {
	// Source is the downloaded file, it must be an existing regular file
	Source string
	// Destination defaults to the directory containing Source
	Destination string
	// App defaults to DefaultApp
	App string

	Platform      platform.Platform
	Runner        proc.Runner
	InstallerArgs []string
	DeleteArchive bool
}

type Result struct {
	Format     installer.Format
	InstallDir string
	Binary     string
	Version    string
}

var factories = []installer.Factory{
	archiveinstaller.ZipFactory(),
	archiveinstaller.TarFactory(),
	dmginstaller.Factory{},
	exeinstaller.Factory{},
}

func getFactory(f installer.Format) installer.Factory {
	for _, factory := range factories {
		if factory.Format() == f {
			return factory
		}
	}
	return nil
}

// Plan is a validated install request with its installer chosen
type Plan struct {
	Source      string
	Destination string
	App         string
	Platform    platform.Platform
	Format      installer.Format

	installer installer.Installer
}

// Prepare validates req and picks the installer for the source format.
// The returned error matches installer.ErrInvalidSource or
// installer.ErrUnsupportedFormat; nothing is written before it returns.
func Prepare(req *Request) (*Plan, error) {
	src, err := resolveSource(req.Source)
	if err != nil {
		return nil, err
	}

	dest := req.Destination
	if dest == "" {
		dest = filepath.Dir(src)
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot get absolute path of %s", dest)
	}

	app := req.App
	if app == "" {
		app = DefaultApp
	}

	format := installer.DetectFormat(src, req.Platform)
	slog.Debug("detected source format", "src", src, "format", format, "platform", req.Platform)

	plan := &Plan{
		Source:      src,
		Destination: dest,
		App:         app,
		Platform:    req.Platform,
		Format:      format,
	}

	factory := getFactory(format)
	if factory == nil {
		return plan, fmt.Errorf("%w: %s on %s", installer.ErrUnsupportedFormat, src, req.Platform)
	}

	plan.installer, err = factory.GetInstaller(&installer.Options{
		Platform:      req.Platform,
		Runner:        req.Runner,
		InstallerArgs: req.InstallerArgs,
		DeleteArchive: req.DeleteArchive,
	})
	if err != nil {
		if ee.Is(err, installer.ErrInstallerNotApplicable) {
			return plan, fmt.Errorf("%w: %s installer on %s", installer.ErrUnsupportedFormat, format, req.Platform)
		}
		return plan, err
	}

	return plan, nil
}

// Install runs the chosen installer and returns the install directory
func (p *Plan) Install(ctx context.Context) (string, error) {
	if p.installer == nil {
		return "", fmt.Errorf("%w: %s", installer.ErrUnsupportedFormat, p.Source)
	}

	installDir, err := p.installer.Install(ctx, p.Source, p.Destination)
	if err != nil {
		return "", ee.Wrapf(err, "cannot install %s", p.Source)
	}

	slog.Debug("installed", "src", p.Source, "installDir", installDir)

	return installDir, nil
}

// Locate finds the application binary under installDir
func (p *Plan) Locate(installDir string) (string, error) {
	return GetBinary(installDir, p.App, p.Platform)
}

// Install installs req.Source into req.Destination and returns where the
// application binary ended up.
//
// If the installation succeeded but no binary is found, the returned error
// matches installer.ErrBinaryNotFound and the result still carries the
// install directory.
func Install(ctx context.Context, req *Request) (*Result, error) {
	plan, err := Prepare(req)
	if plan == nil {
		return nil, err
	}

	result := &Result{
		Format:  plan.Format,
		Version: VersionOf(plan.Source),
	}
	if err != nil {
		return result, err
	}

	result.InstallDir, err = plan.Install(ctx)
	if err != nil {
		return result, err
	}

	result.Binary, err = plan.Locate(result.InstallDir)
	if err != nil {
		return result, err
	}

	return result, nil
}

// GetBinary finds the executable of app under dir
func GetBinary(dir, app string, p platform.Platform) (string, error) {
	if app == "" {
		app = DefaultApp
	}
	return locator.Locate(dir, app, p)
}

func resolveSource(source string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("%w: no source given", installer.ErrInvalidSource)
	}

	src, err := utils.RealPath(source)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", installer.ErrInvalidSource, source, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", installer.ErrInvalidSource, source, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", installer.ErrInvalidSource, source)
	}

	return src, nil
}
