package wandb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"wandb-ci/internal/config"
	"wandb-ci/internal/core/domain"
	ports "wandb-ci/internal/core/ports/output"
)

const (
	headerRequestID = "X-Request-ID"
	userAgent       = "wandb-ci"
	defaultPerPage  = 50
	runOrder        = "+created_at"
)

type wandbClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewWandBClient creates a new W&B GraphQL client adapter
func NewWandBClient(cfg *config.WandBConfig) (ports.TrackingClient, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &wandbClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GraphQL envelope
type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

func (c *wandbClient) do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{
		Query:         query,
		OperationName: operation,
		Variables:     variables,
	})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(headerRequestID, requestID)
	req.SetBasicAuth("api", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrTrackingAPI, operation, err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"operation":  operation,
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
		"request_id": requestID,
	}).Debug("graphql request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: %s returned %d: %s",
			domain.ErrTrackingAPI, operation, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var gqlResp graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrTrackingAPI, operation, err)
	}

	if len(gqlResp.Errors) > 0 {
		messages := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("%w: %s: %s", domain.ErrTrackingAPI, operation, strings.Join(messages, "; "))
	}

	if out == nil || len(gqlResp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %w", domain.ErrTrackingAPI, operation, err)
	}
	return nil
}

// ============================================================================
// Runs
// ============================================================================

func (c *wandbClient) ListRuns(ctx context.Context, entity, project string, filter ports.RunFilter) (*ports.RunPage, error) {
	filters := map[string]any{}
	if len(filter.Tags) > 0 {
		filters["tags"] = map[string]any{"$in": filter.Tags}
	}
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("encode run filters: %w", err)
	}

	perPage := filter.Limit
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	var data runsData
	err = c.do(ctx, "Runs", runsQuery, map[string]any{
		"entity":  entity,
		"project": project,
		"filters": string(filtersJSON),
		"order":   runOrder,
		"perPage": perPage,
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Project == nil {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrProjectNotFound, entity, project)
	}

	page := &ports.RunPage{Total: data.Project.RunCount}
	for _, edge := range data.Project.Runs.Edges {
		page.Runs = append(page.Runs, edge.Node.toDomain(entity, project))
	}
	return page, nil
}

func (c *wandbClient) GetRun(ctx context.Context, entity, project, runID string) (*domain.Run, error) {
	var data runData
	err := c.do(ctx, "Run", runQuery, map[string]any{
		"entity":  entity,
		"project": project,
		"name":    runID,
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Project == nil {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrProjectNotFound, entity, project)
	}
	if data.Project.Run == nil {
		return nil, domain.ErrRunNotFound
	}
	return data.Project.Run.toDomain(entity, project), nil
}

// ============================================================================
// Artifacts
// ============================================================================

func (c *wandbClient) ListLoggedArtifacts(ctx context.Context, run *domain.Run) ([]*domain.Artifact, error) {
	var artifacts []*domain.Artifact
	var cursor *string

	for {
		var data runArtifactsData
		err := c.do(ctx, "RunOutputArtifacts", runOutputArtifactsQuery, map[string]any{
			"entity":  run.Entity,
			"project": run.Project,
			"runName": run.ID,
			"cursor":  cursor,
			"perPage": defaultPerPage,
		}, &data)
		if err != nil {
			return nil, err
		}
		if data.Project == nil || data.Project.Run == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, run.Path())
		}

		conn := data.Project.Run.OutputArtifacts
		for _, edge := range conn.Edges {
			artifacts = append(artifacts, edge.Node.toDomain())
		}
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			break
		}
		next := conn.PageInfo.EndCursor
		cursor = &next
	}

	return artifacts, nil
}

func (c *wandbClient) LinkArtifact(ctx context.Context, artifact *domain.Artifact, target domain.RegistryPath, aliases []string) error {
	aliasInputs := make([]map[string]string, 0, len(aliases))
	for _, alias := range aliases {
		aliasInputs = append(aliasInputs, map[string]string{
			"artifactCollectionName": target.Collection,
			"alias":                  alias,
		})
	}

	var data linkArtifactData
	err := c.do(ctx, "LinkArtifact", linkArtifactMutation, map[string]any{
		"artifactID":            artifact.ID,
		"artifactPortfolioName": target.Collection,
		"entityName":            target.Entity,
		"projectName":           target.Project(),
		"aliases":               aliasInputs,
	}, &data)
	if err != nil {
		return err
	}
	if data.LinkArtifact == nil {
		return fmt.Errorf("%w: link artifact returned no version", domain.ErrTrackingAPI)
	}

	log.WithFields(log.Fields{
		"artifact":      artifact.ID,
		"registry":      target.String(),
		"version_index": data.LinkArtifact.VersionIndex,
	}).Debug("artifact linked")
	return nil
}

func (c *wandbClient) ListArtifactVersions(ctx context.Context, artifactType string, path domain.RegistryPath) ([]*domain.ArtifactVersion, error) {
	var versions []*domain.ArtifactVersion
	var cursor *string

	for {
		var data registryArtifactsData
		err := c.do(ctx, "RegistryArtifacts", registryArtifactsQuery, map[string]any{
			"entityName":   path.Entity,
			"projectName":  path.Project(),
			"artifactType": artifactType,
			"collection":   path.Collection,
			"cursor":       cursor,
			"perPage":      defaultPerPage,
		}, &data)
		if err != nil {
			return nil, err
		}
		if data.Project == nil {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrProjectNotFound, path.Entity, path.Project())
		}
		if data.Project.ArtifactType == nil || data.Project.ArtifactType.ArtifactCollection == nil {
			return versions, nil
		}

		conn := data.Project.ArtifactType.ArtifactCollection.Artifacts
		for _, edge := range conn.Edges {
			versions = append(versions, edge.Node.toVersion(path))
		}
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			break
		}
		next := conn.PageInfo.EndCursor
		cursor = &next
	}

	return versions, nil
}

// ============================================================================
// Reports
// ============================================================================

func (c *wandbClient) SaveReport(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	spec, err := json.Marshal(report.Spec)
	if err != nil {
		return nil, fmt.Errorf("encode report spec: %w", err)
	}

	var data upsertViewData
	err = c.do(ctx, "UpsertView", upsertViewMutation, map[string]any{
		"entityName":  report.Entity,
		"projectName": report.Project,
		"type":        domain.ReportViewType,
		"name":        report.Name,
		"displayName": report.Title,
		"description": report.Description,
		"spec":        string(spec),
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.UpsertView == nil || data.UpsertView.View == nil || data.UpsertView.View.ID == "" {
		return nil, fmt.Errorf("%w: upsert view returned no view", domain.ErrTrackingAPI)
	}

	view := data.UpsertView.View
	saved := *report
	saved.ID = view.ID
	if view.Project != nil {
		saved.Entity = view.Project.EntityName
		saved.Project = view.Project.Name
	}
	return &saved, nil
}

// Ensure interface compliance
var _ ports.TrackingClient = (*wandbClient)(nil)
