package ports

import (
	"context"

	"wandb-ci/internal/core/domain"
)

// RunFilter narrows a run query. Tags match runs carrying any of the given tags.
type RunFilter struct {
	Tags  []string
	Limit int
}

// RunPage is one page of a run query together with the total match count.
type RunPage struct {
	Runs  []*domain.Run
	Total int
}

// TrackingClient defines the operations used against the experiment-tracking service
type TrackingClient interface {
	// Runs
	ListRuns(ctx context.Context, entity, project string, filter RunFilter) (*RunPage, error)
	GetRun(ctx context.Context, entity, project, runID string) (*domain.Run, error)

	// Artifacts logged by a run, in service order
	ListLoggedArtifacts(ctx context.Context, run *domain.Run) ([]*domain.Artifact, error)

	// Registry
	LinkArtifact(ctx context.Context, artifact *domain.Artifact, target domain.RegistryPath, aliases []string) error
	ListArtifactVersions(ctx context.Context, artifactType string, path domain.RegistryPath) ([]*domain.ArtifactVersion, error)

	// Reports. SaveReport creates a new view and returns it with its ID set.
	SaveReport(ctx context.Context, report *domain.Report) (*domain.Report, error)
}
