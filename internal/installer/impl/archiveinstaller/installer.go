package archiveinstaller

import (
	"context"
	"log/slog"
	"os"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/mozinstall/internal/archive"
	"github.com/ImSingee/mozinstall/internal/installer"
)

type Factory struct {
	format installer.Format
}

func ZipFactory() Factory {
	return Factory{installer.Zip}
}

func TarFactory() Factory {
	return Factory{installer.Tar}
}

func (f Factory) Format() installer.Format {
	return f.format
}

func (f Factory) GetInstaller(o *installer.Options) (installer.Installer, error) {
	return &Installer{t: f.format, DeleteAfter: o.DeleteArchive}, nil
}

type Installer struct {
	t installer.Format

	// DeleteAfter removes the archive once extracted
	DeleteAfter bool
}

func (i *Installer) Install(ctx context.Context, src, dest string) (string, error) {
	slog.Debug("zip/tar installer", "t", i.t, "src", src, "dest", dest)

	entries, err := archive.Extract(src, dest, i.DeleteAfter)
	if err != nil {
		return "", ee.Wrapf(err, "cannot install %s file", i.t)
	}

	slog.Debug("zip/tar installer extracted", "entries", entries)

	installDir, ok := pickInstallDir(entries)
	if !ok {
		return "", ee.Errorf("%s file %s is empty", i.t, src)
	}

	return installDir, nil
}

// pickInstallDir chooses the entry the application was installed to: the
// first top level directory, or the first entry when there is none
func pickInstallDir(entries []string) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}

	for _, entry := range entries {
		if info, err := os.Stat(entry); err == nil && info.IsDir() {
			return entry, true
		}
	}

	return entries[0], true
}
