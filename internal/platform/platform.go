package platform

import (
	"context"
	"log/slog"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Platform is the OS family the installers care about.
type Platform uint8

const (
	Other Platform = iota
	MacOS
	Windows
)

func (p Platform) String() string {
	switch p {
	case MacOS:
		return "macos"
	case Windows:
		return "windows"
	default:
		return "other"
	}
}

func (p Platform) IsMac() bool {
	return p == MacOS
}

func (p Platform) IsWindows() bool {
	return p == Windows
}

// ExecutableSuffix returns the file suffix executables carry on p
func (p Platform) ExecutableSuffix() string {
	if p == Windows {
		return ".exe"
	}
	return ""
}

// FromGOOS maps a GOOS value to its Platform
func FromGOOS(goos string) Platform {
	switch strings.ToLower(goos) {
	case "darwin":
		return MacOS
	case "windows":
		return Windows
	default:
		return Other
	}
}

func Current() Platform {
	return FromGOOS(runtime.GOOS)
}

type Info struct {
	Platform Platform
	OS       string
	Arch     string
	Distro   string // empty when detection failed or not applicable
	Family   string
	Version  string
	Kernel   string
}

// Detect returns the current platform along with host details.
//
// Host details are informational only; a failure to read them is logged
// and the returned Info still carries OS/arch.
func Detect(ctx context.Context) *Info {
	info := &Info{
		Platform: Current(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}

	distro, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		slog.Debug("cannot detect host platform details", "err", err)
		return info
	}
	info.Distro = strings.TrimSpace(distro)
	info.Family = strings.TrimSpace(family)
	info.Version = strings.TrimSpace(version)

	kernel, err := host.KernelVersionWithContext(ctx)
	if err == nil {
		info.Kernel = strings.TrimSpace(kernel)
	}

	return info
}

// LogValue implements slog.LogValuer
func (i *Info) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("platform", i.Platform.String()),
		slog.String("os", i.OS),
		slog.String("arch", i.Arch),
		slog.String("distro", i.Distro),
		slog.String("family", i.Family),
		slog.String("version", i.Version),
		slog.String("kernel", i.Kernel),
	)
}
