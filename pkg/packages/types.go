package packages

import (
	"context"
	"github.com/djcass44/workstation/pkg/progress"
)

// Fetcher retrieves the raw bytes of an artifact.
type Fetcher interface {
	Fetch(ctx context.Context, src string, tracker progress.Tracker) ([]byte, error)
}

// Installer places bytes on disk as an executable.
type Installer interface {
	Install(ctx context.Context, location, name string, data []byte) (string, error)
}

// PackageError attributes a failure to the package that
// caused it.
type PackageError struct {
	Name string
	Err  error
}

func (e *PackageError) Error() string {
	return "installing " + e.Name + ": " + e.Err.Error()
}

func (e *PackageError) Unwrap() error {
	return e.Err
}
