package packages

import (
	"context"
	"fmt"
	v1 "github.com/djcass44/workstation/pkg/api/v1"
	"github.com/djcass44/workstation/pkg/archiveutil"
	"github.com/djcass44/workstation/pkg/progress"
	"github.com/go-logr/logr"
	"github.com/h2non/filetype"
)

// Resolver turns either package shape into a
// fetch-then-install pipeline.
type Resolver struct {
	fetcher   Fetcher
	installer Installer
}

func NewResolver(fetcher Fetcher, installer Installer) *Resolver {
	return &Resolver{
		fetcher:   fetcher,
		installer: installer,
	}
}

// Install fetches pkg and installs it under location. The
// returned path is where the executable was written.
func (r *Resolver) Install(ctx context.Context, location string, pkg v1.Package, tracker progress.Tracker) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("pkg", pkg.GetName())
	ctx = logr.NewContext(ctx, log)

	var path string
	var err error
	switch p := pkg.(type) {
	case v1.BinaryPackage:
		path, err = r.installBinary(ctx, location, p, tracker)
	case v1.ArchivePackage:
		path, err = r.installArchive(ctx, location, p, tracker)
	default:
		err = fmt.Errorf("%w: %T", v1.ErrUnknownPackage, pkg)
	}
	if err != nil {
		return "", &PackageError{Name: pkg.GetName(), Err: err}
	}
	return path, nil
}

func (r *Resolver) installBinary(ctx context.Context, location string, pkg v1.BinaryPackage, tracker progress.Tracker) (string, error) {
	log := logr.FromContextOrDiscard(ctx)
	log.V(1).Info("installing binary", "url", pkg.URL)

	data, err := r.fetcher.Fetch(ctx, pkg.URL, tracker)
	if err != nil {
		return "", err
	}
	// the payload is installed as-is either way
	if filetype.IsArchive(data) {
		kind, _ := filetype.Match(data)
		log.Info("binary package looks like an archive, it may need to be configured with 'bin' and 'archive'", "type", kind.Extension)
	}
	return r.installer.Install(ctx, location, pkg.Name, data)
}

func (r *Resolver) installArchive(ctx context.Context, location string, pkg v1.ArchivePackage, tracker progress.Tracker) (string, error) {
	log := logr.FromContextOrDiscard(ctx)
	log.V(1).Info("installing from archive", "archive", pkg.Archive, "bin", pkg.Bin)

	// check the format before we download anything
	kind, err := archiveutil.KindFromURL(pkg.Archive)
	if err != nil {
		return "", err
	}

	data, err := r.fetcher.Fetch(ctx, pkg.Archive, tracker)
	if err != nil {
		return "", err
	}

	if detected, _ := filetype.Match(data); detected != filetype.Unknown {
		log.V(2).Info("detected archive type", "expected", kind.String(), "detected", detected.Extension, "mime", detected.MIME.Value)
	}

	bin, err := archiveutil.ExtractEntry(ctx, data, kind, pkg.Bin)
	if err != nil {
		log.Error(err, "failed to extract binary from archive")
		return "", fmt.Errorf("extracting %s: %w", pkg.Bin, err)
	}
	return r.installer.Install(ctx, location, pkg.Name, bin)
}
