package airutil

import (
	"fmt"
	"runtime"
)

// PlatformKey returns the configuration key used for the
// given operating system and architecture.
func PlatformKey(goos, goarch string) (string, error) {
	var arch string
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "arm":
		arch = "armv7"
	case "386":
		arch = "i686"
	default:
		return "", fmt.Errorf("unsupported architecture: %s", goarch)
	}
	switch goos {
	case "linux", "darwin", "freebsd":
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}
	return goos + "_" + arch, nil
}

// CurrentPlatformKey returns the configuration key of the
// running process.
func CurrentPlatformKey() (string, error) {
	return PlatformKey(runtime.GOOS, runtime.GOARCH)
}
