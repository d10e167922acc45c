package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wandb-ci/internal/core/domain"
	ports "wandb-ci/internal/core/ports/output"
)

// RunService resolves runs in the tracking service
type RunService struct {
	tracking ports.TrackingClient
}

// NewRunService creates a new run lookup service
func NewRunService(tracking ports.TrackingClient) *RunService {
	return &RunService{tracking: tracking}
}

// GetByUniqueTag returns the only run in the project carrying tag.
func (s *RunService) GetByUniqueTag(ctx context.Context, entity, project, tag string) (*domain.Run, error) {
	// Two results are enough to detect ambiguity.
	page, err := s.tracking.ListRuns(ctx, entity, project, ports.RunFilter{
		Tags:  []string{tag},
		Limit: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("list runs tagged %q: %w", tag, err)
	}

	total := page.Total
	if total < len(page.Runs) {
		total = len(page.Runs)
	}

	switch {
	case total > 1:
		return nil, fmt.Errorf("%w %q (%d runs): please ensure only one run is tagged as %q",
			domain.ErrAmbiguousTag, tag, total, tag)
	case len(page.Runs) == 0:
		return nil, fmt.Errorf("%w %q: please ensure one run is tagged as %q", domain.ErrNoTaggedRun, tag, tag)
	}

	run := page.Runs[0]
	log.WithFields(log.Fields{
		"tag": tag,
		"run": run.Path(),
	}).Debug("resolved run by tag")

	return run, nil
}

// GetByID fetches entity/project/runID.
func (s *RunService) GetByID(ctx context.Context, entity, project, runID string) (*domain.Run, error) {
	if runID == "" {
		return nil, domain.ErrInvalidRunID
	}

	run, err := s.tracking.GetRun(ctx, entity, project, runID)
	if err != nil && !errors.Is(err, domain.ErrRunNotFound) {
		return nil, fmt.Errorf("get run %s/%s/%s: %w", entity, project, runID, err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w with ID %q: please ensure the run ID is correct", domain.ErrRunNotFound, runID)
	}

	return run, nil
}

// GetComparisonPair resolves the baseline run by tag and the new run by ID
// concurrently. When both fail, the baseline error wins.
func (s *RunService) GetComparisonPair(ctx context.Context, entity, project, tag, runID string) (base, latest *domain.Run, err error) {
	var baseErr, latestErr error

	g := new(errgroup.Group)
	g.Go(func() error {
		base, baseErr = s.GetByUniqueTag(ctx, entity, project, tag)
		return nil
	})
	g.Go(func() error {
		latest, latestErr = s.GetByID(ctx, entity, project, runID)
		return nil
	})
	_ = g.Wait() // errors captured per lookup

	if baseErr != nil {
		return nil, nil, baseErr
	}
	if latestErr != nil {
		return nil, nil, latestErr
	}
	return base, latest, nil
}
