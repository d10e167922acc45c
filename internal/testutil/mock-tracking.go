package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"wandb-ci/internal/core/domain"
	ports "wandb-ci/internal/core/ports/output"
)

// MockTrackingClient is a mock of TrackingClient.
type MockTrackingClient struct {
	mock.Mock
}

func (m *MockTrackingClient) ListRuns(ctx context.Context, entity, project string, filter ports.RunFilter) (*ports.RunPage, error) {
	args := m.Called(ctx, entity, project, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RunPage), args.Error(1)
}

func (m *MockTrackingClient) GetRun(ctx context.Context, entity, project, runID string) (*domain.Run, error) {
	args := m.Called(ctx, entity, project, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockTrackingClient) ListLoggedArtifacts(ctx context.Context, run *domain.Run) ([]*domain.Artifact, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Artifact), args.Error(1)
}

func (m *MockTrackingClient) LinkArtifact(ctx context.Context, artifact *domain.Artifact, target domain.RegistryPath, aliases []string) error {
	args := m.Called(ctx, artifact, target, aliases)
	return args.Error(0)
}

func (m *MockTrackingClient) ListArtifactVersions(ctx context.Context, artifactType string, path domain.RegistryPath) ([]*domain.ArtifactVersion, error) {
	args := m.Called(ctx, artifactType, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ArtifactVersion), args.Error(1)
}

func (m *MockTrackingClient) SaveReport(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

// MockCIOutput is a mock of CIOutput.
type MockCIOutput struct {
	mock.Mock
}

func (m *MockCIOutput) Set(key, value string) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *MockCIOutput) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}
