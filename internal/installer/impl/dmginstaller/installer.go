package dmginstaller

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/mr"

	"github.com/ImSingee/mozinstall/internal/installer"
	"github.com/ImSingee/mozinstall/internal/lib/glob"
	"github.com/ImSingee/mozinstall/internal/lib/proc"
	"github.com/ImSingee/mozinstall/internal/utils"
)

const (
	hdiutil       = "hdiutil"
	volumesMarker = "/Volumes/"
	bundlePattern = "*.app"
)

type Factory struct{}

func (Factory) Format() installer.Format {
	return installer.Dmg
}

func (Factory) GetInstaller(o *installer.Options) (installer.Installer, error) {
	if !o.Platform.IsMac() {
		return nil, installer.ErrInstallerNotApplicable
	}

	runner := o.Runner
	if runner == nil {
		runner = proc.Default
	}

	return &Installer{runner}, nil
}

type Installer struct {
	runner proc.Runner
}

func New(runner proc.Runner) *Installer {
	return &Installer{runner}
}

// Install mounts src, copies the first .app bundle of the volume into dest
// and returns the copied bundle path. The volume is detached exactly once
// whatever happens after it was mounted.
func (i *Installer) Install(ctx context.Context, src, dest string) (_ string, err error) {
	volume, err := i.attach(ctx, src)
	if err != nil {
		return "", err
	}

	defer func() {
		detachErr := i.detach(ctx, volume)
		if detachErr == nil {
			return
		}
		slog.Warn("cannot detach disk image", "volume", volume, "err", detachErr)
		if err == nil {
			err = detachErr
		}
	}()

	bundle, err := findBundle(volume)
	if err != nil {
		return "", err
	}

	if err := utils.EnsureDir(dest); err != nil {
		return "", err
	}

	target := filepath.Join(dest, bundle)
	slog.Debug("copy app bundle", "from", filepath.Join(volume, bundle), "to", target)

	if err := utils.CopyTree(filepath.Join(volume, bundle), target); err != nil {
		return "", ee.Wrapf(err, "cannot copy %s", bundle)
	}

	return target, nil
}

func (i *Installer) attach(ctx context.Context, src string) (string, error) {
	result := i.runner.Run(ctx, hdiutil, "attach", "-nobrowse", src)
	if err := result.Err(); err != nil {
		return "", fmt.Errorf("%w %s: %v", installer.ErrMountFailure, src, err)
	}

	volume, ok := parseMountPoint(result.Output)
	if !ok {
		return "", fmt.Errorf("%w %s: no mounted volume in hdiutil output", installer.ErrMountFailure, src)
	}

	slog.Debug("disk image mounted", "src", src, "volume", volume)

	return volume, nil
}

func (i *Installer) detach(ctx context.Context, volume string) error {
	// a cancelled ctx must not leave the volume mounted
	result := i.runner.Run(context.WithoutCancel(ctx), hdiutil, "detach", volume)
	if err := result.Err(); err != nil {
		return ee.Wrapf(err, "cannot detach %s", volume)
	}
	return nil
}

// parseMountPoint finds the mounted volume in `hdiutil attach` output.
//
// Each output line is tab separated; the mount point column may contain
// spaces, so fields are not split on whitespace.
func parseMountPoint(output []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		for _, field := range strings.Split(scanner.Text(), "\t") {
			field = strings.TrimSpace(field)
			if strings.Contains(field, volumesMarker) {
				return field, true
			}
		}
	}
	return "", false
}

// findBundle returns the name of the first .app entry directly under volume
func findBundle(volume string) (string, error) {
	entries, err := os.ReadDir(volume)
	if err != nil {
		return "", ee.Wrapf(err, "cannot read volume %s", volume)
	}

	names := mr.Map(entries, func(e os.DirEntry, _ int) string {
		return e.Name()
	})

	name, ok, err := glob.First(bundlePattern, names)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", installer.ErrAppBundleNotFound, volume)
	}

	return name, nil
}
