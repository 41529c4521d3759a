package mozinstall

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImSingee/mozinstall/internal/installer"
	"github.com/ImSingee/mozinstall/internal/lib/proc"
	"github.com/ImSingee/mozinstall/internal/platform"
	"github.com/ImSingee/mozinstall/internal/testutil"
	"github.com/ImSingee/mozinstall/internal/utils"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX execute bits")
	}
}

func realDir(t *testing.T) string {
	t.Helper()
	dir, err := utils.RealPath(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestInstallZip(t *testing.T) {
	skipOnWindows(t)

	src := testutil.WriteZip(t, filepath.Join(realDir(t), "firefox-99.0.1.zip"), []testutil.Entry{
		{Name: "app/"},
		{Name: "app/firefox", Body: "#!/bin/sh\n", Mode: 0755},
	})
	dest := realDir(t)

	result, err := Install(context.Background(), &Request{
		Source:      src,
		Destination: dest,
		App:         "firefox",
		Platform:    platform.Other,
	})
	require.NoError(t, err)
	assert.Equal(t, installer.Zip, result.Format)
	assert.Equal(t, filepath.Join(dest, "app"), result.InstallDir)
	assert.Equal(t, filepath.Join(dest, "app", "firefox"), result.Binary)
	assert.Equal(t, "99.0.1", result.Version)
}

func TestInstallTarDefaults(t *testing.T) {
	skipOnWindows(t)

	dir := realDir(t)
	src := testutil.WriteTar(t, filepath.Join(dir, "firefox-99.tar.xz"), "xz", testutil.FirefoxEntries)

	result, err := Install(context.Background(), &Request{Source: src, Platform: platform.Other})
	require.NoError(t, err)
	assert.Equal(t, installer.Tar, result.Format)
	assert.Equal(t, filepath.Join(dir, "firefox", "firefox"), result.Binary)
}

func TestInstallUsesRequestedApp(t *testing.T) {
	skipOnWindows(t)

	src := testutil.WriteTar(t, filepath.Join(realDir(t), "thunderbird.tar.gz"), "gz", []testutil.Entry{
		{Name: "thunderbird/"},
		{Name: "thunderbird/thunderbird", Body: "bin", Mode: 0755},
	})
	dest := realDir(t)

	result, err := Install(context.Background(), &Request{Source: src, Destination: dest, App: "thunderbird", Platform: platform.Other})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "thunderbird", "thunderbird"), result.Binary)
}

func TestInstallBinaryNotFound(t *testing.T) {
	src := testutil.WriteZip(t, filepath.Join(realDir(t), "firefox-99.zip"), []testutil.Entry{
		{Name: "app/"},
		{Name: "app/README", Body: "no binary here"},
	})
	dest := realDir(t)

	result, err := Install(context.Background(), &Request{Source: src, Destination: dest, Platform: platform.Other})
	assert.ErrorIs(t, err, installer.ErrBinaryNotFound)
	require.NotNil(t, result)
	assert.Equal(t, filepath.Join(dest, "app"), result.InstallDir)
	assert.Empty(t, result.Binary)
}

func TestInstallInvalidSource(t *testing.T) {
	dir := realDir(t)

	for name, src := range map[string]string{
		"empty":     "",
		"missing":   filepath.Join(dir, "missing.zip"),
		"directory": dir,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Install(context.Background(), &Request{Source: src, Platform: platform.Other})
			assert.ErrorIs(t, err, installer.ErrInvalidSource)
		})
	}
}

func TestInstallUnsupported(t *testing.T) {
	dir := realDir(t)
	txt := testutil.WriteFile(t, dir, "notes.txt", "hello", 0644)
	dmg := testutil.WriteFile(t, dir, "Firefox.dmg", "koly", 0644)

	runner := &testutil.FakeRunner{}

	_, err := Install(context.Background(), &Request{Source: txt, Platform: platform.Other, Runner: runner})
	assert.ErrorIs(t, err, installer.ErrUnsupportedFormat)

	_, err = Install(context.Background(), &Request{Source: dmg, Platform: platform.Other, Runner: runner})
	assert.ErrorIs(t, err, installer.ErrUnsupportedFormat)

	assert.Empty(t, runner.Calls())
}

func TestInstallDmg(t *testing.T) {
	skipOnWindows(t)

	dir := realDir(t)
	src := testutil.WriteFile(t, dir, "Firefox 99.0.1.dmg", "koly", 0644)

	volume := filepath.Join(realDir(t), "Volumes", "Firefox")
	testutil.WriteFile(t, volume, "Firefox.app/Contents/MacOS/firefox", "#!/bin/sh\n", 0755)

	runner := &testutil.FakeRunner{
		Handler: func(call testutil.Call) *proc.Result {
			if call.Args[0] == "attach" {
				return &proc.Result{Output: []byte("/dev/disk2s1\tApple_HFS\t" + volume + "\n")}
			}
			return &proc.Result{}
		},
	}

	dest := realDir(t)
	result, err := Install(context.Background(), &Request{Source: src, Destination: dest, Platform: platform.MacOS, Runner: runner})
	require.NoError(t, err)
	assert.Equal(t, installer.Dmg, result.Format)
	assert.Equal(t, filepath.Join(dest, "Firefox.app"), result.InstallDir)
	assert.Equal(t, filepath.Join(dest, "Firefox.app", "Contents", "MacOS", "firefox"), result.Binary)
	assert.Equal(t, "99.0.1", result.Version)

	assert.Len(t, runner.CallsWith("attach"), 1)
	assert.Len(t, runner.CallsWith("detach"), 1)
}

func TestInstallExe(t *testing.T) {
	dir := realDir(t)
	src := testutil.WriteFile(t, dir, "Firefox Setup 99.0.exe", "MZ", 0755)
	dest := realDir(t)

	// the fake installer drops the binary where /D= points
	runner := &testutil.FakeRunner{
		Handler: func(call testutil.Call) *proc.Result {
			target := call.Args[len(call.Args)-1][len("/D="):]
			testutil.WriteFile(t, target, "firefox.exe", "MZ", 0755)
			return &proc.Result{}
		},
	}

	result, err := Install(context.Background(), &Request{Source: src, Destination: dest, Platform: platform.Windows, Runner: runner})
	require.NoError(t, err)
	assert.Equal(t, installer.WindowsExe, result.Format)
	assert.Equal(t, dest, result.InstallDir)
	assert.Equal(t, filepath.Join(dest, "firefox.exe"), result.Binary)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, src, calls[0].Name)
}

func TestGetBinary(t *testing.T) {
	skipOnWindows(t)

	dir := realDir(t)
	want := testutil.WriteFile(t, dir, "firefox/firefox", "bin", 0755)

	got, err := GetBinary(dir, "", platform.Other)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "99.0.1", VersionOf("/tmp/firefox-99.0.1.tar.bz2"))
	assert.Equal(t, "115.3.0", VersionOf("Firefox 115.3.0esr.dmg"))
	assert.Equal(t, "", VersionOf("/tmp/firefox.zip"))
}

func TestPrepare(t *testing.T) {
	dir := realDir(t)
	src := testutil.WriteTar(t, filepath.Join(dir, "firefox.tar.gz"), "gz", testutil.FirefoxEntries)

	plan, err := Prepare(&Request{Source: src, Platform: platform.Other})
	require.NoError(t, err)
	assert.Equal(t, src, plan.Source)
	assert.Equal(t, dir, plan.Destination)
	assert.Equal(t, DefaultApp, plan.App)
	assert.Equal(t, installer.Tar, plan.Format)

	// nothing extracted yet
	assert.NoDirExists(t, filepath.Join(dir, "firefox"))
}

func TestPlanInstallWithoutInstaller(t *testing.T) {
	txt := testutil.WriteFile(t, realDir(t), "notes.txt", "hello", 0644)

	plan, err := Prepare(&Request{Source: txt, Platform: platform.Other})
	assert.ErrorIs(t, err, installer.ErrUnsupportedFormat)
	require.NotNil(t, plan)

	_, err = plan.Install(context.Background())
	assert.ErrorIs(t, err, installer.ErrUnsupportedFormat)
}
