package cli

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wandb-ci/internal/config"
	"wandb-ci/internal/core/services"
)

// NewPromoteCommand builds the promote helper. It reads everything from the
// environment and takes no arguments.
func NewPromoteCommand() *cobra.Command {
	cmd := newCommand("promote",
		"Link the latest model artifact of RUN_ID into the model registry under REGISTRY_TAG",
		runPromote, (*config.Config).ValidatePromote)
	cmd.Long = `Link the latest model artifact of a run into the W&B model registry.

Environment:
  WANDB_API_KEY        API key (required)
  RUN_ID               run whose model artifact is promoted (required)
  REGISTRY_TAG         alias given to the registry version (required)
  REGISTRY_COLLECTION  registry collection (default "MNIST Classifier")
  WANDB_ENTITY         entity (default "FacuRoffet99")
  WANDB_PROJECT        project (default "pytorch-intro")
  CI, GITHUB_OUTPUT    when CI is set, REGISTRY_URL=<url> is appended to GITHUB_OUTPUT`
	return cmd
}

func runPromote(cmd *cobra.Command, cfg *config.Config) error {
	tracking, output, err := adapters(cfg)
	if err != nil {
		return err
	}

	svc := services.NewPromotionService(tracking, output, cfg.WandB.AppURL)
	result, err := svc.PromoteByID(cmd.Context(), services.PromoteRequest{
		Entity:     cfg.WandB.Entity,
		Project:    cfg.WandB.Project,
		Collection: cfg.Registry.Collection,
		RunID:      cfg.Run.ID,
		Alias:      cfg.Registry.Tag,
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"artifact": result.Artifact.QualifiedName(),
		"version":  result.Version.Version(),
		"url":      result.URL,
	}).Info("model promoted")

	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.URL)
	return err
}
