package installer

import (
	"context"
	"errors"
	"fmt"
	"github.com/djcass44/workstation/pkg/airutil"
	"github.com/go-logr/logr"
	"io/fs"
	"os"
	"path/filepath"
)

// ExecutableMode is applied to every installed file
// regardless of what it was before.
const ExecutableMode fs.FileMode = 0o755

var ErrPathResolution = errors.New("failed to resolve install path")

// ExpandFunc resolves a leading '~' in a path.
type ExpandFunc func(path string) (string, error)

type Installer struct {
	expand ExpandFunc
}

// NewInstaller creates an Installer. If expand is nil the
// current user's home directory is used to resolve '~'.
func NewInstaller(expand ExpandFunc) *Installer {
	if expand == nil {
		expand = airutil.ExpandHome
	}
	return &Installer{expand: expand}
}

// Path returns the absolute destination of the package called
// name when installed under location.
func (i *Installer) Path(location, name string) (string, error) {
	dir, err := i.expand(location)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrPathResolution, location, err)
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrPathResolution, location, err)
	}
	return filepath.Join(dir, name), nil
}

// Install writes data to location/name and marks the file as
// executable. Existing files are truncated and overwritten in
// place.
func (i *Installer) Install(ctx context.Context, location, name string, data []byte) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("name", name)

	dst, err := i.Path(location, name)
	if err != nil {
		log.Error(err, "failed to resolve install path", "location", location)
		return "", err
	}
	log = log.WithValues("path", dst)

	if ok, _ := isSymbolicLink(dst); ok {
		log.V(2).Info("destination is a symbolic link, writing through it")
	}

	log.V(2).Info("writing file", "size", len(data))
	if err := os.WriteFile(dst, data, ExecutableMode); err != nil {
		log.Error(err, "failed to write file")
		return "", fmt.Errorf("writing file: %w", err)
	}
	// WriteFile only applies the mode to new files (minus the umask)
	if err := os.Chmod(dst, ExecutableMode); err != nil {
		log.Error(err, "failed to update file permissions")
		return "", fmt.Errorf("updating file permissions: %w", err)
	}
	log.V(1).Info("installed file")
	return dst, nil
}

func isSymbolicLink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}
