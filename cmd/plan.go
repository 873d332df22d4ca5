package cmd

import (
	"encoding/json"
	"fmt"

	v1 "github.com/djcass44/workstation/pkg/api/v1"
	"github.com/djcass44/workstation/pkg/archiveutil"
	"github.com/djcass44/workstation/pkg/config"
	"github.com/djcass44/workstation/pkg/installer"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "print what setup would install without downloading anything",
	Args:  cobra.NoArgs,
	RunE:  plan,
}

func init() {
	planCmd.Flags().StringP(flagConfig, "c", config.DefaultPath, "path to the workstation configuration file")
	_ = planCmd.MarkFlagFilename(flagConfig, ".toml", ".yaml", ".yml", ".json")
}

type planEntry struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Format string `json:"format,omitempty"`
	Entry  string `json:"entry,omitempty"`
	Path   string `json:"path"`
	Error  string `json:"error,omitempty"`
}

func plan(cmd *cobra.Command, _ []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	configPath, _ := cmd.Flags().GetString(flagConfig)

	cfg, err := readConfig(cmd.Context(), configPath)
	if err != nil {
		return err
	}

	inst := installer.NewInstaller(nil)

	entries := make([]planEntry, 0, len(cfg.Packages))
	for _, pkg := range cfg.Packages {
		e := planEntry{Name: pkg.GetName()}
		switch p := pkg.(type) {
		case v1.BinaryPackage:
			e.Source = p.URL
		case v1.ArchivePackage:
			e.Source = p.Archive
			e.Entry = p.Bin
			kind, err := archiveutil.KindFromURL(p.Archive)
			if err != nil {
				e.Error = err.Error()
			}
			e.Format = kind.String()
		}
		path, err := inst.Path(cfg.Location, pkg.GetName())
		if err != nil {
			return fmt.Errorf("resolving install path: %w", err)
		}
		e.Path = path
		log.V(1).Info("planned package", "pkg", e.Name, "path", e.Path)
		entries = append(entries, e)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "\t")
	return enc.Encode(entries)
}
