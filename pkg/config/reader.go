package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/djcass44/workstation/pkg/airutil"
	v1 "github.com/djcass44/workstation/pkg/api/v1"
	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/maps"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// DefaultPath is the configuration file used when one
// isn't provided.
const DefaultPath = "workstation.toml"

var ErrMissingPlatform = errors.New("configuration has no entry for this platform")

// Read loads the configuration file at path. TOML is used
// unless the file has a .yaml, .yml or .json extension.
//
// Every platform section has to parse, but sections are only
// validated once they are selected by ForPlatform.
func Read(ctx context.Context, path string) (v1.RawConfig, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)
	log.V(1).Info("reading configuration file")

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		log.Error(err, "failed to open configuration file")
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	var raw v1.RawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		raw, err = decodeYAML(f)
	default:
		raw, err = decodeTOML(f)
	}
	if err != nil {
		log.Error(err, "failed to decode configuration file")
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return raw, nil
}

// ForPlatform selects the configuration section for the
// given platform key and converts it. Other sections are
// ignored.
func ForPlatform(cfg v1.RawConfig, key string) (v1.ArchConfig, error) {
	raw, ok := cfg[key]
	if !ok {
		keys := maps.Keys(cfg)
		slices.Sort(keys)
		return v1.ArchConfig{}, fmt.Errorf("%w: %s (found: %s)", ErrMissingPlatform, key, strings.Join(keys, ", "))
	}
	arch, err := Convert(raw)
	if err != nil {
		return v1.ArchConfig{}, fmt.Errorf("%s: %w", key, err)
	}
	return arch, nil
}

// Convert expands any environment variables used in the
// location and URLs, and then validates the result.
func Convert(raw v1.RawArchConfig) (v1.ArchConfig, error) {
	expanded, err := expand(raw)
	if err != nil {
		return v1.ArchConfig{}, err
	}
	return expanded.Decode()
}

// expand returns a copy of raw with environment variables
// replaced. raw is not modified.
func expand(raw v1.RawArchConfig) (v1.RawArchConfig, error) {
	var err error
	if raw.Location, err = airutil.ExpandEnv(raw.Location); err != nil {
		return raw, err
	}
	pkgs := make([]v1.RawPackage, len(raw.Packages))
	for i, p := range raw.Packages {
		if p.Archive, err = expandPtr(p.Archive); err != nil {
			return raw, fmt.Errorf("packages[%d]: %w", i, err)
		}
		if p.URL, err = expandPtr(p.URL); err != nil {
			return raw, fmt.Errorf("packages[%d]: %w", i, err)
		}
		pkgs[i] = p
	}
	raw.Packages = pkgs
	return raw, nil
}

func expandPtr(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	val, err := airutil.ExpandEnv(*s)
	if err != nil {
		return nil, err
	}
	return &val, nil
}

func decodeTOML(r io.Reader) (v1.RawConfig, error) {
	var raw v1.RawConfig
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&raw); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, errors.New(strict.String())
		}
		return nil, err
	}
	return raw, nil
}

func decodeYAML(r io.Reader) (v1.RawConfig, error) {
	var raw v1.RawConfig
	if err := yaml.NewYAMLOrJSONDecoder(r, 4).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
