package setup

import (
	"context"
	"errors"
	"fmt"
	v1 "github.com/djcass44/workstation/pkg/api/v1"
	"github.com/djcass44/workstation/pkg/progress"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Resolver installs a single package.
type Resolver interface {
	Install(ctx context.Context, location string, pkg v1.Package, tracker progress.Tracker) (string, error)
}

// Report is the outcome of installing a single package.
type Report struct {
	Name string
	// Path is where the package was installed. It is empty
	// if the installation failed.
	Path string
	Err  error
}

// Run installs every package in cfg concurrently. A failing
// package never stops the others, and Run only returns once
// every package has either succeeded or failed. Reports are
// returned in the same order as cfg.Packages.
func Run(ctx context.Context, cfg v1.ArchConfig, resolver Resolver, surface progress.Surface) []Report {
	log := logr.FromContextOrDiscard(ctx).WithValues("run", uuid.NewString())
	log.Info("installing packages", "count", len(cfg.Packages), "location", cfg.Location, "jobs", cfg.Jobs)

	reports := make([]Report, len(cfg.Packages))

	// errgroup is only used for the join and the limit. Units
	// never return an error so one failure can't cancel the rest.
	var g errgroup.Group
	if cfg.Jobs > 0 {
		g.SetLimit(cfg.Jobs)
	}
	// every package gets a tracker up front, even when the
	// number of jobs is limited
	trackers := make([]progress.Tracker, len(cfg.Packages))
	for i, pkg := range cfg.Packages {
		trackers[i] = surface.Track(pkg.GetName())
	}
	for i, pkg := range cfg.Packages {
		g.Go(func() error {
			reports[i] = install(ctx, log, cfg.Location, pkg, resolver, trackers[i])
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("finished installing packages", "succeeded", len(reports)-failed, "failed", failed)
	return reports
}

// ErrPanic is reported for a package whose installation
// panicked.
var ErrPanic = errors.New("panic while installing package")

func install(ctx context.Context, log logr.Logger, location string, pkg v1.Package, resolver Resolver, tracker progress.Tracker) (report Report) {
	name := pkg.GetName()
	log = log.WithValues("pkg", name)
	ctx = logr.NewContext(ctx, log)

	// a panic only fails this package
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w %s: %v", ErrPanic, name, r)
			log.Error(err, "recovered from panic")
			tracker.Fail(fmt.Sprintf("Error installing %s: %v", name, r))
			report = Report{Name: name, Err: err}
		}
	}()

	if err := ctx.Err(); err != nil {
		tracker.Fail(fmt.Sprintf("Error installing %s: %s", name, err))
		return Report{Name: name, Err: err}
	}

	log.V(1).Info("installing package")
	path, err := resolver.Install(ctx, location, pkg, tracker)
	if err != nil {
		log.Error(err, "failed to install package")
		tracker.Fail(fmt.Sprintf("Error %s", err))
		return Report{Name: name, Err: err}
	}
	log.V(1).Info("installed package", "path", path)
	tracker.Finish(fmt.Sprintf("Downloaded %s", name))
	return Report{Name: name, Path: path}
}
