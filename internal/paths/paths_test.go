package paths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDirFlagWins(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/peniche")

	got, err := ResolveConfigDir("relative/dir")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "dir", filepath.Base(got))
}

func TestResolveConfigDirEnvFallback(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/peniche")

	got, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/peniche", got)
}

func TestDefaultConfigDirLinuxXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-specific path layout")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	got, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "peniche"), got)
}

func TestDefaultConfigDirLinuxHomeFallback(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-specific path layout")
	}
	t.Setenv("XDG_CONFIG_HOME", "")

	orig := platformDir.homeDir
	platformDir.homeDir = func() (string, error) { return "/home/sailor", nil }
	defer func() { platformDir.homeDir = orig }()

	got, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/sailor", ".config", "peniche"), got)
}
