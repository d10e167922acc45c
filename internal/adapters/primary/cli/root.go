package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wandb-ci/internal/adapters/secondary/github"
	"wandb-ci/internal/adapters/secondary/wandb"
	"wandb-ci/internal/config"
	ports "wandb-ci/internal/core/ports/output"
)

var version = "dev"

// Execute runs cmd with a context cancelled on SIGINT/SIGTERM and returns the
// process exit code.
func Execute(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		log.WithError(err).Errorf("%s failed", cmd.Name())
	}
	return exitCode(err)
}

func newCommand(use, short string, run func(cmd *cobra.Command, cfg *config.Config) error, validate func(*config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			initLogger(cfg, cmd.ErrOrStderr())

			// Nothing may reach the network before this passes.
			if err := validate(cfg); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}
}

// adapters wires the secondary adapters from configuration.
func adapters(cfg *config.Config) (ports.TrackingClient, ports.CIOutput, error) {
	tracking, err := wandb.NewWandBClient(&cfg.WandB)
	if err != nil {
		return nil, nil, fmt.Errorf("create W&B client: %w", err)
	}

	output := github.NewOutputWriter(&cfg.CI)
	if !output.IsAvailable() {
		log.Debug("CI output disabled")
	}
	return tracking, output, nil
}

func initLogger(cfg *config.Config, w io.Writer) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(w)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
