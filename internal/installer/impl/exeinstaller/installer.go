package exeinstaller

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/mozinstall/internal/installer"
	"github.com/ImSingee/mozinstall/internal/lib/proc"
)

type Factory struct{}

func (Factory) Format() installer.Format {
	return installer.WindowsExe
}

func (Factory) GetInstaller(o *installer.Options) (installer.Installer, error) {
	if !o.Platform.IsWindows() {
		return nil, installer.ErrInstallerNotApplicable
	}

	runner := o.Runner
	if runner == nil {
		runner = proc.Default
	}

	return &Installer{runner: runner, args: o.InstallerArgs}, nil
}

// Installer runs an NSIS style installer executable unattended
type Installer struct {
	runner proc.Runner
	args   []string
}

func New(runner proc.Runner, args ...string) *Installer {
	return &Installer{runner: runner, args: args}
}

// Install runs src silently with dest as the install directory and waits
// for it to exit. dest is returned as the install dir.
func (i *Installer) Install(ctx context.Context, src, dest string) (string, error) {
	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", ee.Wrapf(err, "cannot get absolute path of %s", dest)
	}
	dest = filepath.Clean(dest)

	result := i.runner.Run(ctx, src, Args(dest, i.args...)...)
	if err := result.Err(); err != nil {
		return "", fmt.Errorf("%w: %s exited with code %d: %v", installer.ErrInstallerFailed, src, result.ExitCode, err)
	}

	slog.Debug("installer finished", "src", src, "dest", dest)

	return dest, nil
}

// Args returns the silent install arguments for dest. /D= must be the last
// argument and must not be quoted, even when dest contains spaces.
func Args(dest string, extra ...string) []string {
	args := make([]string, 0, len(extra)+2)
	args = append(args, extra...)
	args = append(args, "/S", "/D="+dest)
	return args
}
