package platform

import (
	"context"
	"runtime"
	"testing"

	"github.com/ImSingee/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGOOS(t *testing.T) {
	tt.AssertEqual(t, MacOS, FromGOOS("darwin"))
	tt.AssertEqual(t, Windows, FromGOOS("windows"))
	tt.AssertEqual(t, Windows, FromGOOS("WINDOWS"))
	tt.AssertEqual(t, Other, FromGOOS("linux"))
	tt.AssertEqual(t, Other, FromGOOS("freebsd"))
}

func TestExecutableSuffix(t *testing.T) {
	assert.Equal(t, ".exe", Windows.ExecutableSuffix())
	assert.Equal(t, "", MacOS.ExecutableSuffix())
	assert.Equal(t, "", Other.ExecutableSuffix())
}

func TestString(t *testing.T) {
	assert.Equal(t, "macos", MacOS.String())
	assert.Equal(t, "windows", Windows.String())
	assert.Equal(t, "other", Other.String())
}

func TestDetect(t *testing.T) {
	info := Detect(context.Background())
	require.NotNil(t, info)

	assert.Equal(t, Current(), info.Platform)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
}
