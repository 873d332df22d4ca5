package airutil

import (
	"fmt"

	"github.com/drone/envsubst"
	"github.com/mitchellh/go-homedir"
)

// ExpandEnv replaces ${var} or $var in the string according
// to the values of the current environment variables.
func ExpandEnv(s string) (string, error) {
	val, err := envsubst.EvalEnv(s)
	if err != nil {
		return "", fmt.Errorf("expanding environment in %q: %w", s, err)
	}
	return val, nil
}

// ExpandHome expands a leading '~' to the current user's
// home directory.
func ExpandHome(path string) (string, error) {
	return homedir.Expand(path)
}
