package dmginstaller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImSingee/mozinstall/internal/installer"
	"github.com/ImSingee/mozinstall/internal/lib/proc"
	"github.com/ImSingee/mozinstall/internal/platform"
	"github.com/ImSingee/mozinstall/internal/testutil"
)

// fakeVolume creates a directory that looks like a mounted disk image and a
// runner whose attach reports it
func fakeVolume(t *testing.T, withBundle bool) (string, *testutil.FakeRunner) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("volume paths are POSIX paths")
	}

	volume := filepath.Join(t.TempDir(), "Volumes", "Firefox Nightly")
	require.NoError(t, os.MkdirAll(volume, 0755))
	testutil.WriteFile(t, volume, ".background/bg.png", "png", 0644)
	require.NoError(t, os.Symlink("/Applications", filepath.Join(volume, "Applications")))
	if withBundle {
		testutil.WriteFile(t, volume, "Firefox Nightly.app/Contents/MacOS/firefox", "#!/bin/sh\n", 0755)
		testutil.WriteFile(t, volume, "Firefox Nightly.app/Contents/Info.plist", "<plist/>", 0644)
	}

	runner := &testutil.FakeRunner{
		Handler: func(call testutil.Call) *proc.Result {
			if call.Args[0] == "attach" {
				return &proc.Result{
					Output: []byte("/dev/disk4          \tGUID_partition_scheme          \t\n" +
						"/dev/disk4s1        \tApple_HFS                      \t" + volume + "\n"),
				}
			}
			return &proc.Result{}
		},
	}

	return volume, runner
}

func TestInstall(t *testing.T) {
	volume, runner := fakeVolume(t, true)
	dest := filepath.Join(t.TempDir(), "Applications")

	app, err := New(runner).Install(context.Background(), "/tmp/Firefox Nightly.dmg", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "Firefox Nightly.app"), app)
	assert.FileExists(t, filepath.Join(app, "Contents", "MacOS", "firefox"))

	attach := runner.CallsWith("attach")
	require.Len(t, attach, 1)
	assert.Equal(t, "hdiutil", attach[0].Name)
	assert.Equal(t, []string{"attach", "-nobrowse", "/tmp/Firefox Nightly.dmg"}, attach[0].Args)

	detach := runner.CallsWith("detach")
	require.Len(t, detach, 1)
	assert.Equal(t, []string{"detach", volume}, detach[0].Args)
}

func TestInstallDetachesWhenCopyFails(t *testing.T) {
	_, runner := fakeVolume(t, true)
	dest := t.TempDir()

	// the bundle already exists in dest
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "Firefox Nightly.app"), 0755))

	_, err := New(runner).Install(context.Background(), "/tmp/a.dmg", dest)
	require.Error(t, err)

	assert.Len(t, runner.CallsWith("attach"), 1)
	assert.Len(t, runner.CallsWith("detach"), 1)
}

func TestInstallNoBundle(t *testing.T) {
	_, runner := fakeVolume(t, false)

	_, err := New(runner).Install(context.Background(), "/tmp/a.dmg", t.TempDir())
	assert.ErrorIs(t, err, installer.ErrAppBundleNotFound)

	assert.Len(t, runner.CallsWith("attach"), 1)
	assert.Len(t, runner.CallsWith("detach"), 1)
}

func TestInstallMountFailure(t *testing.T) {
	t.Run("hdiutil fails", func(t *testing.T) {
		runner := &testutil.FakeRunner{
			Handler: func(call testutil.Call) *proc.Result {
				return &proc.Result{ExitCode: -1, UnknownErr: errors.New("exec: hdiutil not found")}
			},
		}

		_, err := New(runner).Install(context.Background(), "/tmp/a.dmg", t.TempDir())
		assert.ErrorIs(t, err, installer.ErrMountFailure)
		assert.Empty(t, runner.CallsWith("detach"))
	})

	t.Run("no volume in output", func(t *testing.T) {
		runner := &testutil.FakeRunner{
			Handler: func(call testutil.Call) *proc.Result {
				return &proc.Result{Output: []byte("/dev/disk4\tGUID_partition_scheme\t\n")}
			},
		}

		_, err := New(runner).Install(context.Background(), "/tmp/a.dmg", t.TempDir())
		assert.ErrorIs(t, err, installer.ErrMountFailure)
		assert.Empty(t, runner.CallsWith("detach"))
	})
}

func TestInstallDetachFailure(t *testing.T) {
	volume, _ := fakeVolume(t, true)
	runner := &testutil.FakeRunner{
		Handler: func(call testutil.Call) *proc.Result {
			if call.Args[0] == "attach" {
				return &proc.Result{Output: []byte("/dev/disk4s1\tApple_HFS\t" + volume + "\n")}
			}
			return &proc.Result{ExitCode: -1, UnknownErr: errors.New("resource busy")}
		},
	}

	_, err := New(runner).Install(context.Background(), "/tmp/a.dmg", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource busy")
	assert.Len(t, runner.CallsWith("detach"), 1)
}

func TestParseMountPoint(t *testing.T) {
	volume, ok := parseMountPoint([]byte("/dev/disk2\tGUID_partition_scheme\t\n/dev/disk2s1\tApple_HFS\t/Volumes/Firefox\n"))
	assert.True(t, ok)
	assert.Equal(t, "/Volumes/Firefox", volume)

	volume, ok = parseMountPoint([]byte("/dev/disk2s1\tApple_HFS\t/Volumes/Firefox Developer Edition\n"))
	assert.True(t, ok)
	assert.Equal(t, "/Volumes/Firefox Developer Edition", volume)

	_, ok = parseMountPoint([]byte("hdiutil: attach failed - no mountable file systems\n"))
	assert.False(t, ok)
}

func TestFactory(t *testing.T) {
	f := Factory{}
	assert.Equal(t, installer.Dmg, f.Format())

	_, err := f.GetInstaller(&installer.Options{Platform: platform.Other})
	assert.ErrorIs(t, err, installer.ErrInstallerNotApplicable)

	i, err := f.GetInstaller(&installer.Options{Platform: platform.MacOS})
	require.NoError(t, err)
	assert.NotNil(t, i)
}
