package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"wandb-ci/internal/core/domain"
	ports "wandb-ci/internal/core/ports/output"
)

// PromotionService links run artifacts into the model registry
type PromotionService struct {
	tracking ports.TrackingClient
	runs     *RunService
	output   ports.CIOutput
	appURL   string
}

// NewPromotionService creates a new promotion service. output may be nil.
func NewPromotionService(tracking ports.TrackingClient, output ports.CIOutput, appURL string) *PromotionService {
	return &PromotionService{
		tracking: tracking,
		runs:     NewRunService(tracking),
		output:   output,
		appURL:   appURL,
	}
}

// PromoteRequest contains parameters for a promotion
type PromoteRequest struct {
	Entity     string
	Project    string
	Collection string
	RunID      string
	Alias      string
}

// PromoteResult describes what was linked and where
type PromoteResult struct {
	Run          *domain.Run
	Artifact     *domain.Artifact
	RegistryPath domain.RegistryPath
	Version      *domain.ArtifactVersion
	URL          string
}

// PromoteByID links the latest model artifact of the run into the registry
// collection under req.Alias and returns the registry URL of the linked version.
func (s *PromotionService) PromoteByID(ctx context.Context, req PromoteRequest) (*PromoteResult, error) {
	run, err := s.runs.GetByID(ctx, req.Entity, req.Project, req.RunID)
	if err != nil {
		return nil, err
	}

	logged, err := s.tracking.ListLoggedArtifacts(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("list artifacts of run %s: %w", run.Path(), err)
	}

	models := domain.FilterByType(logged, domain.ArtifactTypeModel)
	if len(models) == 0 {
		return nil, fmt.Errorf("run %s: %w", run.Path(), domain.ErrNoModelArtifacts)
	}
	artifact := domain.LatestArtifact(models)

	registryPath := domain.NewRegistryPath(req.Entity, req.Collection)
	if err := s.tracking.LinkArtifact(ctx, artifact, registryPath, []string{req.Alias}); err != nil {
		return nil, fmt.Errorf("link %s to %s: %w", artifact.QualifiedName(), registryPath, err)
	}

	log.WithFields(log.Fields{
		"run":      run.Path(),
		"artifact": artifact.QualifiedName(),
		"registry": registryPath.String(),
		"alias":    req.Alias,
	}).Info("linked model artifact to registry")

	versions, err := s.tracking.ListArtifactVersions(ctx, domain.ArtifactTypeModel, registryPath)
	if err != nil {
		return nil, fmt.Errorf("list versions of %s: %w", registryPath, err)
	}

	version := domain.SelectVersion(versions, req.Alias)
	if version == nil {
		return nil, fmt.Errorf("%s: %w", registryPath, domain.ErrNoRegistryVersions)
	}

	registryURL := domain.RegistryURL(s.appURL, registryPath, version)

	if err := emitOutput(s.output, OutputRegistryURL, registryURL); err != nil {
		return nil, err
	}

	return &PromoteResult{
		Run:          run,
		Artifact:     artifact,
		RegistryPath: registryPath,
		Version:      version,
		URL:          registryURL,
	}, nil
}
