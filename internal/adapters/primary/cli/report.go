package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wandb-ci/internal/config"
	"wandb-ci/internal/core/services"
)

// NewReportCommand builds the comparison report helper. It reads everything
// from the environment and takes no arguments.
func NewReportCommand() *cobra.Command {
	cmd := newCommand("report",
		"Create a W&B report comparing the run tagged RUN_TAG with RUN_ID",
		runReport, (*config.Config).ValidateReport)
	cmd.Long = `Create a W&B report comparing a baseline run with a new run.

Environment:
  WANDB_API_KEY      API key (required)
  RUN_ID             new run (required)
  RUN_TAG            tag carried by exactly one baseline run (required)
  WANDB_ENTITY       entity (default "FacuRoffet99")
  WANDB_PROJECT      project (default "pytorch-intro")
  CI, GITHUB_OUTPUT  when CI is set, REPORT_URL=<url> is appended to GITHUB_OUTPUT`
	return cmd
}

func runReport(cmd *cobra.Command, cfg *config.Config) error {
	tracking, output, err := adapters(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	entity, project := cfg.WandB.Entity, cfg.WandB.Project

	runs := services.NewRunService(tracking)
	baseRun, newRun, err := runs.GetComparisonPair(ctx, entity, project, cfg.Run.Tag, cfg.Run.ID)
	if err != nil {
		return err
	}

	reports := services.NewReportService(tracking, output, cfg.WandB.AppURL)
	reportURL, err := reports.CreateComparison(ctx, services.CreateComparisonRequest{
		Entity:  entity,
		Project: project,
		Tag:     cfg.Run.Tag,
		BaseRun: baseRun,
		NewRun:  newRun,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), reportURL)
	return err
}
