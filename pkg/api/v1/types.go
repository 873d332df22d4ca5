package v1

import "time"

type ArchConfig struct {
	// Location is the directory that packages are installed
	// into. It may start with '~'.
	Location string
	// Jobs limits how many packages are installed at the same
	// time. Zero means no limit.
	Jobs int
	// Timeout bounds each individual download. Zero means no
	// timeout.
	Timeout  time.Duration
	Packages []Package
}

// Package is either an ArchivePackage or a BinaryPackage.
type Package interface {
	GetName() string
	isPackage()
}

// ArchivePackage is installed by downloading Archive and
// extracting the entry named Bin.
type ArchivePackage struct {
	Name    string
	Bin     string
	Archive string
}

// BinaryPackage is installed by downloading URL and writing
// the response body as-is.
type BinaryPackage struct {
	Name string
	URL  string
}

func (p ArchivePackage) GetName() string { return p.Name }
func (p BinaryPackage) GetName() string  { return p.Name }

func (ArchivePackage) isPackage() {}
func (BinaryPackage) isPackage()  {}

// RawConfig is the on-disk configuration. It maps a platform
// key (e.g. linux_x86_64) to the configuration for that
// platform.
type RawConfig map[string]RawArchConfig

type RawArchConfig struct {
	Location string       `toml:"location" json:"location"`
	Jobs     int          `toml:"jobs,omitempty" json:"jobs,omitempty"`
	Timeout  string       `toml:"timeout,omitempty" json:"timeout,omitempty"`
	Packages []RawPackage `toml:"packages" json:"packages"`
}

// RawPackage holds every field that either package shape
// may use. Pointers are used so that we can tell the difference
// between a missing field and an empty one.
type RawPackage struct {
	Name    *string `toml:"name,omitempty" json:"name,omitempty"`
	Bin     *string `toml:"bin,omitempty" json:"bin,omitempty"`
	Archive *string `toml:"archive,omitempty" json:"archive,omitempty"`
	URL     *string `toml:"url,omitempty" json:"url,omitempty"`
}
