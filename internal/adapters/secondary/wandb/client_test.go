package wandb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wandb-ci/internal/config"
	"wandb-ci/internal/core/domain"
	ports "wandb-ci/internal/core/ports/output"
	"wandb-ci/internal/testutil"
)

const testAPIKey = "test-key"

func setupClient(t *testing.T) (*testutil.FakeWandB, ports.TrackingClient) {
	t.Helper()
	fake := testutil.NewFakeWandB(testAPIKey)
	t.Cleanup(fake.Close)

	client, err := NewWandBClient(&config.WandBConfig{
		APIKey:  testAPIKey,
		BaseURL: fake.URL() + "/",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return fake, client
}

func TestNewWandBClient_RequiresAPIKey(t *testing.T) {
	client, err := NewWandBClient(&config.WandBConfig{BaseURL: "http://localhost"})
	assert.Nil(t, client)
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

// ============================================================================
// Runs
// ============================================================================

func TestListRuns_FiltersByTag(t *testing.T) {
	fake, client := setupClient(t)
	fake.AddRun(&domain.Run{ID: "aaa", Name: "first", Entity: "acme", Project: "mnist", Tags: []string{"baseline"}})
	fake.AddRun(&domain.Run{ID: "bbb", Name: "second", Entity: "acme", Project: "mnist", Tags: []string{"candidate"}})
	fake.AddRun(&domain.Run{ID: "ccc", Name: "other-project", Entity: "acme", Project: "cifar", Tags: []string{"baseline"}})

	page, err := client.ListRuns(context.Background(), "acme", "mnist", ports.RunFilter{Tags: []string{"baseline"}, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Runs, 1)
	assert.Equal(t, "aaa", page.Runs[0].ID)
	assert.Equal(t, "first", page.Runs[0].Name)
	assert.Equal(t, "acme/mnist/aaa", page.Runs[0].Path())
}

func TestListRuns_ReportsTotalBeyondLimit(t *testing.T) {
	fake, client := setupClient(t)
	for i := 0; i < 3; i++ {
		fake.AddRun(&domain.Run{ID: fmt.Sprintf("r%d", i), Entity: "acme", Project: "mnist", Tags: []string{"baseline"}})
	}

	page, err := client.ListRuns(context.Background(), "acme", "mnist", ports.RunFilter{Tags: []string{"baseline"}, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Runs, 2)
}

func TestGetRun(t *testing.T) {
	fake, client := setupClient(t)
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	fake.AddRun(&domain.Run{ID: "xyz", Name: "brisk-sky-3", StorageID: "UnVuOnYxOnh5eg==", Entity: "acme", Project: "mnist", CreatedAt: created})

	run, err := client.GetRun(context.Background(), "acme", "mnist", "xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", run.ID)
	assert.Equal(t, "brisk-sky-3", run.Name)
	assert.Equal(t, "UnVuOnYxOnh5eg==", run.StorageID)
	assert.True(t, created.Equal(run.CreatedAt))
}

func TestGetRun_NotFound(t *testing.T) {
	_, client := setupClient(t)

	run, err := client.GetRun(context.Background(), "acme", "mnist", "nope")
	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

// ============================================================================
// Artifacts and registry
// ============================================================================

func TestListLoggedArtifacts_Paginates(t *testing.T) {
	fake, client := setupClient(t)
	run := &domain.Run{ID: "run1", Entity: "acme", Project: "mnist"}
	fake.AddRun(run)
	for i := 0; i < defaultPerPage+5; i++ {
		fake.AddArtifact(run, &domain.Artifact{ID: fmt.Sprintf("a%d", i), Type: domain.ArtifactTypeModel, Collection: "model-run1", VersionIndex: i})
	}

	artifacts, err := client.ListLoggedArtifacts(context.Background(), run)
	require.NoError(t, err)
	require.Len(t, artifacts, defaultPerPage+5)
	assert.Equal(t, "a0", artifacts[0].ID)
	assert.Equal(t, fmt.Sprintf("a%d", defaultPerPage+4), artifacts[len(artifacts)-1].ID)
	assert.Equal(t, domain.ArtifactTypeModel, artifacts[0].Type)
	assert.Equal(t, "model-run1", artifacts[0].Collection)

	ops := fake.Operations()
	assert.Equal(t, []string{"RunOutputArtifacts", "RunOutputArtifacts"}, ops)
}

func TestLinkArtifact_AndListVersions(t *testing.T) {
	fake, client := setupClient(t)
	path := domain.NewRegistryPath("acme", "MNIST Classifier")
	ctx := context.Background()

	require.NoError(t, client.LinkArtifact(ctx, &domain.Artifact{ID: "art-1"}, path, []string{"staging"}))
	require.NoError(t, client.LinkArtifact(ctx, &domain.Artifact{ID: "art-2"}, path, []string{"production"}))

	links := fake.Links()
	require.Len(t, links, 2)
	assert.Equal(t, testutil.Link{
		ArtifactID: "art-2",
		Entity:     "acme",
		Project:    domain.RegistryProject,
		Collection: "MNIST Classifier",
		Aliases:    []string{"production"},
	}, links[1])

	versions, err := client.ListArtifactVersions(ctx, domain.ArtifactTypeModel, path)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "v1", versions[0].Version())
	assert.ElementsMatch(t, []string{"production", "latest"}, versions[0].Aliases)
	assert.Equal(t, "acme", versions[0].Entity)
	assert.Equal(t, "MNIST Classifier", versions[0].Collection)
}

func TestListArtifactVersions_UnknownCollection(t *testing.T) {
	_, client := setupClient(t)

	versions, err := client.ListArtifactVersions(context.Background(), domain.ArtifactTypeModel, domain.NewRegistryPath("acme", "missing"))
	require.NoError(t, err)
	assert.Empty(t, versions)
}

// ============================================================================
// Reports
// ============================================================================

func TestSaveReport(t *testing.T) {
	fake, client := setupClient(t)
	spec := domain.BuildComparisonSpec(domain.ComparisonSpecInput{
		Entity: "acme", Project: "mnist",
		BaseRun: &domain.Run{ID: "base"}, NewRun: &domain.Run{ID: "new"},
	}, func() string { return "fixed" })

	saved, err := client.SaveReport(context.Background(), &domain.Report{
		Name:        "view-name",
		Title:       domain.ComparisonTitle,
		Description: "desc",
		Entity:      "acme",
		Project:     "mnist",
		Spec:        spec,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	views := fake.Views()
	require.Len(t, views, 1)
	assert.Equal(t, "view-name", views[0].Name)
	assert.Equal(t, domain.ComparisonTitle, views[0].Title)

	var stored domain.ReportSpec
	require.NoError(t, json.Unmarshal(views[0].Spec, &stored))
	assert.Equal(t, domain.ReportWidthFluid, stored.Width)
	require.Len(t, stored.Blocks, 1)

	url, err := saved.URL("https://wandb.ai")
	require.NoError(t, err)
	assert.NotContains(t, url, "=")
}

// ============================================================================
// Failure handling
// ============================================================================

func TestClient_GraphQLErrors(t *testing.T) {
	fake, client := setupClient(t)
	fake.FailOperation("Run", "permission denied")

	_, err := client.GetRun(context.Background(), "acme", "mnist", "x")
	assert.ErrorIs(t, err, domain.ErrTrackingAPI)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestClient_Unauthorized(t *testing.T) {
	fake := testutil.NewFakeWandB(testAPIKey)
	t.Cleanup(fake.Close)

	client, err := NewWandBClient(&config.WandBConfig{APIKey: "wrong", BaseURL: fake.URL()})
	require.NoError(t, err)

	_, err = client.GetRun(context.Background(), "acme", "mnist", "x")
	assert.ErrorIs(t, err, domain.ErrTrackingAPI)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_SendsHeaders(t *testing.T) {
	var gotAuthUser, gotRequestID, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthUser, _, _ = r.BasicAuth()
		gotRequestID = r.Header.Get(headerRequestID)
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"data":{"project":{"run":null}}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewWandBClient(&config.WandBConfig{APIKey: testAPIKey, BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetRun(context.Background(), "acme", "mnist", "x")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
	assert.Equal(t, "api", gotAuthUser)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClient_RequestIDPerCall(t *testing.T) {
	fake, client := setupClient(t)
	fake.AddRun(&domain.Run{ID: "xyz", Entity: "acme", Project: "mnist"})

	for i := 0; i < 2; i++ {
		_, err := client.GetRun(context.Background(), "acme", "mnist", "xyz")
		require.NoError(t, err)
	}

	ids := fake.RequestIDs()
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestClient_ProjectNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"project":null}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewWandBClient(&config.WandBConfig{APIKey: testAPIKey, BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.ListRuns(context.Background(), "acme", "ghost", ports.RunFilter{})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestParseTime(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), parseTime("2024-01-02T03:04:05"))
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), parseTime("2024-01-02T04:04:05+01:00"))
	assert.True(t, parseTime("garbage").IsZero())
}
