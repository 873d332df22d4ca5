package airutil

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() {
		homedir.DisableCache = false
	})
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cases = []struct {
		in  string
		out string
	}{
		{"~", home},
		{"~/.local/bin", filepath.Join(home, ".local", "bin")},
		{"/opt/bin", "/opt/bin"},
		{"bin", "bin"},
	}
	for _, tt := range cases {
		t.Run(tt.in, func(t *testing.T) {
			out, err := ExpandHome(tt.in)
			assert.NoError(t, err)
			assert.EqualValues(t, tt.out, out)
		})
	}

	t.Run("other users are not supported", func(t *testing.T) {
		_, err := ExpandHome("~root/bin")
		assert.Error(t, err)
	})
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("WKS_TEST_VERSION", "1.2.3")

	out, err := ExpandEnv("https://example.com/v${WKS_TEST_VERSION}/tool.tar.gz")
	require.NoError(t, err)
	assert.EqualValues(t, "https://example.com/v1.2.3/tool.tar.gz", out)

	out, err = ExpandEnv("https://example.com/tool")
	require.NoError(t, err)
	assert.EqualValues(t, "https://example.com/tool", out)
}

func TestPlatformKey(t *testing.T) {
	var cases = []struct {
		goos   string
		goarch string
		out    string
		ok     bool
	}{
		{"linux", "amd64", "linux_x86_64", true},
		{"linux", "arm64", "linux_aarch64", true},
		{"darwin", "arm64", "darwin_aarch64", true},
		{"windows", "amd64", "", false},
		{"linux", "mips", "", false},
	}
	for _, tt := range cases {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			out, err := PlatformKey(tt.goos, tt.goarch)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.EqualValues(t, tt.out, out)
		})
	}
}
