package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wandb-ci/internal/core/domain"
	"wandb-ci/internal/testutil"
)

const (
	testAPIKey = "cli-key"
	testAppURL = "https://app.example"
)

var envKeys = []string{
	"WANDB_API_KEY", "WANDB_BASE_URL", "WANDB_APP_URL", "WANDB_ENTITY", "WANDB_PROJECT",
	"WANDB_TIMEOUT", "REGISTRY_COLLECTION", "REGISTRY_TAG", "RUN_ID", "RUN_TAG",
	"CI", "GITHUB_OUTPUT", "LOGGER_LEVEL", "LOGGER_FORMAT",
}

// setupEnv points the helpers at a fresh fake and clears every other setting.
func setupEnv(t *testing.T) *testutil.FakeWandB {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	fake := testutil.NewFakeWandB(testAPIKey)
	t.Cleanup(fake.Close)

	t.Setenv("WANDB_API_KEY", testAPIKey)
	t.Setenv("WANDB_BASE_URL", fake.URL())
	t.Setenv("WANDB_APP_URL", testAppURL)
	t.Setenv("WANDB_ENTITY", "acme")
	t.Setenv("WANDB_PROJECT", "mnist")
	t.Setenv("WANDB_TIMEOUT", "5s")
	t.Setenv("LOGGER_LEVEL", "error")
	return fake
}

func run(t *testing.T, cmd *cobra.Command) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{})
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func enableCI(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "github_output")
	t.Setenv("CI", "true")
	t.Setenv("GITHUB_OUTPUT", path)
	return path
}

func seedModelRun(fake *testutil.FakeWandB) *domain.Run {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &domain.Run{ID: "r1", Name: "brisk-sky-3", Entity: "acme", Project: "mnist"}
	fake.AddRun(r)
	fake.AddArtifact(r, &domain.Artifact{ID: "art-old", Type: domain.ArtifactTypeModel, Collection: "model-r1", VersionIndex: 0, CreatedAt: created})
	fake.AddArtifact(r, &domain.Artifact{ID: "art-data", Type: "dataset", Collection: "mnist", CreatedAt: created.Add(2 * time.Hour)})
	fake.AddArtifact(r, &domain.Artifact{ID: "art-new", Type: domain.ArtifactTypeModel, Collection: "model-r1", VersionIndex: 1, CreatedAt: created.Add(time.Hour)})
	return r
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// ============================================================================
// Promote
// ============================================================================

const expectedRegistryURL = testAppURL + "/acme/registry/model?selectionPath=acme%2Fmodel-registry%2FMNIST+Classifier&version=v0"

func TestPromote_LinksLatestModel(t *testing.T) {
	fake := setupEnv(t)
	seedModelRun(fake)
	t.Setenv("RUN_ID", "r1")
	t.Setenv("REGISTRY_TAG", "production")

	out, err := run(t, NewPromoteCommand())
	require.NoError(t, err)
	assert.Equal(t, expectedRegistryURL+"\n", out)

	links := fake.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "art-new", links[0].ArtifactID)
	assert.Equal(t, "MNIST Classifier", links[0].Collection)
	assert.Equal(t, []string{"production"}, links[0].Aliases)
}

func TestPromote_WritesRegistryURLInCI(t *testing.T) {
	fake := setupEnv(t)
	seedModelRun(fake)
	path := enableCI(t)
	require.NoError(t, os.WriteFile(path, []byte("EARLIER=1\n"), 0o644))
	t.Setenv("RUN_ID", "r1")
	t.Setenv("REGISTRY_TAG", "production")

	_, err := run(t, NewPromoteCommand())
	require.NoError(t, err)
	assert.Equal(t, []string{"EARLIER=1", "REGISTRY_URL=" + expectedRegistryURL}, readLines(t, path))
}

func TestPromote_NoOutputOutsideCI(t *testing.T) {
	fake := setupEnv(t)
	seedModelRun(fake)
	path := filepath.Join(t.TempDir(), "github_output")
	t.Setenv("GITHUB_OUTPUT", path)
	t.Setenv("RUN_ID", "r1")
	t.Setenv("REGISTRY_TAG", "production")

	_, err := run(t, NewPromoteCommand())
	require.NoError(t, err)
	assert.NoFileExists(t, path)
}

func TestPromote_NoModelArtifacts(t *testing.T) {
	fake := setupEnv(t)
	r := &domain.Run{ID: "r1", Entity: "acme", Project: "mnist"}
	fake.AddRun(r)
	fake.AddArtifact(r, &domain.Artifact{ID: "art-data", Type: "dataset", Collection: "mnist"})
	path := enableCI(t)
	t.Setenv("RUN_ID", "r1")
	t.Setenv("REGISTRY_TAG", "production")

	_, err := run(t, NewPromoteCommand())
	assert.ErrorIs(t, err, domain.ErrNoModelArtifacts)
	assert.Equal(t, ExitLookup, exitCode(err))
	assert.Empty(t, fake.Links())
	assert.NoFileExists(t, path)
}

func TestPromote_ValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "missing api key",
			env:     map[string]string{"WANDB_API_KEY": "", "RUN_ID": "r1", "REGISTRY_TAG": "production"},
			wantErr: domain.ErrMissingAPIKey,
		},
		{
			name:    "missing run id",
			env:     map[string]string{"REGISTRY_TAG": "production"},
			wantErr: domain.ErrMissingRunID,
		},
		{
			name:    "missing registry tag",
			env:     map[string]string{"RUN_ID": "r1"},
			wantErr: domain.ErrMissingRegistryTag,
		},
		{
			name:    "ci without output file",
			env:     map[string]string{"RUN_ID": "r1", "REGISTRY_TAG": "production", "CI": "1"},
			wantErr: domain.ErrMissingOutputPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := setupEnv(t)
			seedModelRun(fake)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := run(t, NewPromoteCommand())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ExitConfiguration, exitCode(err))
			assert.Empty(t, fake.Operations())
		})
	}
}

// ============================================================================
// Report
// ============================================================================

const expectedReportURL = testAppURL + "/acme/mnist/reports/Run-comparison--VmlldzoxMDA1"

func seedComparison(fake *testutil.FakeWandB) {
	fake.AddRun(&domain.Run{ID: "base1", Name: "gentle-wave-1", Entity: "acme", Project: "mnist", Tags: []string{"baseline"}})
	fake.AddRun(&domain.Run{ID: "new22", Name: "brisk-sky-3", Entity: "acme", Project: "mnist"})
}

func TestReport_CreatesComparison(t *testing.T) {
	fake := setupEnv(t)
	seedComparison(fake)
	t.Setenv("RUN_ID", "new22")
	t.Setenv("RUN_TAG", "baseline")

	out, err := run(t, NewReportCommand())
	require.NoError(t, err)
	assert.Equal(t, expectedReportURL+"\n", out)

	views := fake.Views()
	require.Len(t, views, 1)
	assert.Equal(t, "acme", views[0].Entity)
	assert.Equal(t, "mnist", views[0].Project)
	assert.Equal(t, domain.ComparisonTitle, views[0].Title)
	assert.Equal(t, "New run: brisk-sky-3\n'Baseline' run: gentle-wave-1", views[0].Description)
	assert.Contains(t, string(views[0].Spec), `"new22"`)
	assert.Contains(t, string(views[0].Spec), `"base1"`)
}

func TestReport_WritesReportURLInCI(t *testing.T) {
	fake := setupEnv(t)
	seedComparison(fake)
	path := enableCI(t)
	t.Setenv("RUN_ID", "new22")
	t.Setenv("RUN_TAG", "baseline")

	_, err := run(t, NewReportCommand())
	require.NoError(t, err)
	assert.Equal(t, []string{"REPORT_URL=" + expectedReportURL}, readLines(t, path))
}

func TestReport_EachRunCreatesNewReport(t *testing.T) {
	fake := setupEnv(t)
	seedComparison(fake)
	t.Setenv("RUN_ID", "new22")
	t.Setenv("RUN_TAG", "baseline")

	first, err := run(t, NewReportCommand())
	require.NoError(t, err)
	second, err := run(t, NewReportCommand())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	views := fake.Views()
	require.Len(t, views, 2)
	assert.NotEqual(t, views[0].Name, views[1].Name)
}

func TestReport_TagLookupFailures(t *testing.T) {
	tests := []struct {
		name    string
		tagged  int
		wantErr error
	}{
		{name: "no tagged run", tagged: 0, wantErr: domain.ErrNoTaggedRun},
		{name: "ambiguous tag", tagged: 2, wantErr: domain.ErrAmbiguousTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := setupEnv(t)
			fake.AddRun(&domain.Run{ID: "new22", Entity: "acme", Project: "mnist"})
			for i := 0; i < tt.tagged; i++ {
				fake.AddRun(&domain.Run{ID: fmt.Sprintf("base%d", i), Entity: "acme", Project: "mnist", Tags: []string{"baseline"}})
			}
			path := enableCI(t)
			t.Setenv("RUN_ID", "new22")
			t.Setenv("RUN_TAG", "baseline")

			_, err := run(t, NewReportCommand())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ExitLookup, exitCode(err))
			assert.Empty(t, fake.Views())
			assert.NoFileExists(t, path)
		})
	}
}

func TestReport_UnknownNewRun(t *testing.T) {
	fake := setupEnv(t)
	seedComparison(fake)
	t.Setenv("RUN_ID", "missing")
	t.Setenv("RUN_TAG", "baseline")

	_, err := run(t, NewReportCommand())
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
	assert.Empty(t, fake.Views())
}

func TestReport_RejectsArguments(t *testing.T) {
	setupEnv(t)
	cmd := NewReportCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})

	assert.Error(t, cmd.Execute())
}

func TestReport_AuthFailure(t *testing.T) {
	fake := setupEnv(t)
	seedComparison(fake)
	t.Setenv("WANDB_API_KEY", "wrong-key")
	t.Setenv("RUN_ID", "new22")
	t.Setenv("RUN_TAG", "baseline")

	_, err := run(t, NewReportCommand())
	assert.ErrorIs(t, err, domain.ErrTrackingAPI)
	assert.Equal(t, ExitFailure, exitCode(err))
}
