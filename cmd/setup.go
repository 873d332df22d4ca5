package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/djcass44/workstation/internal/setup"
	"github.com/djcass44/workstation/pkg/airutil"
	v1 "github.com/djcass44/workstation/pkg/api/v1"
	"github.com/djcass44/workstation/pkg/config"
	"github.com/djcass44/workstation/pkg/downloader"
	"github.com/djcass44/workstation/pkg/installer"
	"github.com/djcass44/workstation/pkg/packages"
	"github.com/djcass44/workstation/pkg/progress"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "install every package for this platform",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().StringP(flagConfig, "c", config.DefaultPath, "path to the workstation configuration file")
	_ = setupCmd.MarkFlagFilename(flagConfig, ".toml", ".yaml", ".yml", ".json")
}

func runSetup(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	log := logr.FromContextOrDiscard(ctx)

	configPath, _ := cmd.Flags().GetString(flagConfig)

	cfg, err := readConfig(ctx, configPath)
	if err != nil {
		return err
	}

	inst := installer.NewInstaller(nil)
	unlock, err := inst.Lock(ctx, cfg.Location)
	if err != nil {
		return err
	}
	defer func() {
		_ = unlock()
	}()

	resolver := packages.NewResolver(
		downloader.NewDownloader(downloader.Options{Timeout: cfg.Timeout}),
		inst,
	)

	// only draw progress bars when a person is watching
	var surface progress.Surface
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		surface = progress.NewBars(cmd.OutOrStdout())
	} else {
		surface = progress.NewLog(ctx)
	}

	reports := setup.Run(ctx, cfg, resolver, surface)
	surface.Wait()

	// failures have already been rendered by the progress
	// surface, so they don't change the exit code
	for _, r := range reports {
		if r.Err != nil {
			log.V(1).Info("package failed", "pkg", r.Name, "error", r.Err.Error())
		}
	}
	return nil
}

// readConfig loads the configuration file and selects the
// entry for the running platform.
func readConfig(ctx context.Context, path string) (v1.ArchConfig, error) {
	log := logr.FromContextOrDiscard(ctx)

	key, err := airutil.CurrentPlatformKey()
	if err != nil {
		return v1.ArchConfig{}, err
	}
	log.V(1).Info("detected platform", "platform", key)

	cfg, err := config.Read(ctx, path)
	if err != nil {
		return v1.ArchConfig{}, fmt.Errorf("reading config: %w", err)
	}
	return config.ForPlatform(cfg, key)
}
