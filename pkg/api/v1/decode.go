package v1

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrAmbiguousPackage = errors.New("package matches both the archive and binary shapes")
	ErrUnknownPackage   = errors.New("package matches neither the archive nor binary shape")
	ErrDuplicateName    = errors.New("duplicate package name")
)

// Decode converts the raw package into one of the concrete
// package shapes based on which fields are present.
//
// {name, bin, archive} is an ArchivePackage and {name, url}
// is a BinaryPackage.
func (r RawPackage) Decode() (Package, error) {
	if r.Name == nil || *r.Name == "" {
		return nil, errors.New("package is missing a name")
	}
	name := *r.Name
	if err := validateName(name); err != nil {
		return nil, err
	}

	isArchive := r.Bin != nil || r.Archive != nil
	isBinary := r.URL != nil

	switch {
	case isArchive && isBinary:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousPackage, name)
	case isBinary:
		if *r.URL == "" {
			return nil, fmt.Errorf("package %s has an empty url", name)
		}
		return BinaryPackage{Name: name, URL: *r.URL}, nil
	case isArchive:
		if r.Bin == nil || r.Archive == nil {
			return nil, fmt.Errorf("archive package %s requires both 'bin' and 'archive'", name)
		}
		if *r.Bin == "" || *r.Archive == "" {
			return nil, fmt.Errorf("archive package %s has an empty 'bin' or 'archive'", name)
		}
		return ArchivePackage{Name: name, Bin: *r.Bin, Archive: *r.Archive}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, name)
	}
}

// Decode validates the raw configuration and converts it
// into an ArchConfig.
func (r RawArchConfig) Decode() (ArchConfig, error) {
	if r.Location == "" {
		return ArchConfig{}, errors.New("location must be set")
	}
	if r.Jobs < 0 {
		return ArchConfig{}, fmt.Errorf("jobs must not be negative: %d", r.Jobs)
	}
	var timeout time.Duration
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return ArchConfig{}, fmt.Errorf("parsing timeout: %w", err)
		}
		if d < 0 {
			return ArchConfig{}, fmt.Errorf("timeout must not be negative: %s", r.Timeout)
		}
		timeout = d
	}

	seen := make(map[string]int, len(r.Packages))
	pkgs := make([]Package, 0, len(r.Packages))
	for i, rp := range r.Packages {
		p, err := rp.Decode()
		if err != nil {
			return ArchConfig{}, fmt.Errorf("packages[%d]: %w", i, err)
		}
		// two packages with the same name would race on the
		// same destination file
		if j, ok := seen[p.GetName()]; ok {
			return ArchConfig{}, fmt.Errorf("packages[%d]: %w: %s (also used by packages[%d])", i, ErrDuplicateName, p.GetName(), j)
		}
		seen[p.GetName()] = i
		pkgs = append(pkgs, p)
	}

	return ArchConfig{
		Location: r.Location,
		Jobs:     r.Jobs,
		Timeout:  timeout,
		Packages: pkgs,
	}, nil
}

// validateName checks that the name can be used as a
// filename inside the install location.
func validateName(name string) error {
	if name == "." || name == ".." || strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("package name must be a plain filename: %q", name)
	}
	return nil
}
