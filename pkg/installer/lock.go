package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/djcass44/workstation/pkg/downloader"
	"github.com/go-logr/logr"
	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("install location is in use by another process")

// Lock takes an exclusive lock on location so that two runs
// can't write to it at the same time. The lock file is kept
// outside of location. Lock gives up when ctx is done.
func (i *Installer) Lock(ctx context.Context, location string) (func() error, error) {
	log := logr.FromContextOrDiscard(ctx)

	dir, err := i.Path(location, "")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(os.TempDir(), "wks-"+downloader.HashString(dir)+".lock")
	log = log.WithValues("location", dir, "lock", path)

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		log.Error(err, "failed to acquire lock")
		return nil, fmt.Errorf("locking %s: %w", dir, err)
	}
	if !ok {
		log.Info("waiting for another process to finish installing")
		ok, err = fl.TryLockContext(ctx, 500*time.Millisecond)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLocked, dir, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
		}
	}
	log.V(2).Info("acquired lock")
	return fl.Unlock, nil
}
