package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"wandb-ci/internal/core/domain"
)

var operationPattern = regexp.MustCompile(`(?:query|mutation)\s+(\w+)`)

// SavedView is a report stored by the fake.
type SavedView struct {
	ID          string
	Entity      string
	Project     string
	Name        string
	Title       string
	Description string
	Spec        json.RawMessage
}

// Link records one LinkArtifact call.
type Link struct {
	ArtifactID string
	Entity     string
	Project    string
	Collection string
	Aliases    []string
}

// FakeWandB is an in-memory stand-in for the W&B GraphQL API.
type FakeWandB struct {
	Server *httptest.Server
	APIKey string

	mu         sync.Mutex
	runs       []*domain.Run
	artifacts  map[string][]*domain.Artifact
	registry   map[string][]*domain.ArtifactVersion
	views      []SavedView
	links      []Link
	operations []string
	requestIDs []string
	failOps    map[string]string
}

// NewFakeWandB starts a fake server that accepts apiKey. Close it with t.Cleanup(fake.Close).
func NewFakeWandB(apiKey string) *FakeWandB {
	gin.SetMode(gin.TestMode)

	f := &FakeWandB{
		APIKey:    apiKey,
		artifacts: make(map[string][]*domain.Artifact),
		registry:  make(map[string][]*domain.ArtifactVersion),
		failOps:   make(map[string]string),
	}

	r := gin.New()
	r.Use(f.requestLog())
	r.POST("/graphql", f.handleGraphQL)
	f.Server = httptest.NewServer(r)
	return f
}

func (f *FakeWandB) URL() string { return f.Server.URL }

func (f *FakeWandB) Close() { f.Server.Close() }

// ============================================================================
// Seeding and inspection
// ============================================================================

func (f *FakeWandB) AddRun(run *domain.Run) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
}

func (f *FakeWandB) AddArtifact(run *domain.Run, artifact *domain.Artifact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[run.Path()] = append(f.artifacts[run.Path()], artifact)
}

func (f *FakeWandB) AddRegistryVersion(path domain.RegistryPath, version *domain.ArtifactVersion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[path.String()] = append(f.registry[path.String()], version)
}

// FailOperation makes the named GraphQL operation answer with an error.
func (f *FakeWandB) FailOperation(operation, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOps[operation] = message
}

func (f *FakeWandB) Views() []SavedView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.views)
}

func (f *FakeWandB) Links() []Link {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.links)
}

// Operations lists the GraphQL operation names received, in order.
func (f *FakeWandB) Operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.operations)
}

// RequestIDs lists the X-Request-ID header of every request, in order.
func (f *FakeWandB) RequestIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requestIDs)
}

func (f *FakeWandB) RegistryVersions(path domain.RegistryPath) []*domain.ArtifactVersion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.registry[path.String()])
}

// ============================================================================
// GraphQL dispatch
// ============================================================================

func (f *FakeWandB) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")

		c.Next()

		f.mu.Lock()
		f.requestIDs = append(f.requestIDs, requestID)
		f.mu.Unlock()

		log.WithFields(log.Fields{
			"status":     c.Writer.Status(),
			"path":       c.Request.URL.Path,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": requestID,
		}).Debug("fake W&B request")
	}
}

type graphQLBody struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func (f *FakeWandB) handleGraphQL(c *gin.Context) {
	user, pass, ok := c.Request.BasicAuth()
	if !ok || user != "api" || pass != f.APIKey {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": []gin.H{{"message": "user is not logged in"}}})
		return
	}

	var body graphQLBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": err.Error()}}})
		return
	}

	op := body.OperationName
	if op == "" {
		if m := operationPattern.FindStringSubmatch(body.Query); m != nil {
			op = m[1]
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations = append(f.operations, op)

	if msg, ok := f.failOps[op]; ok {
		c.JSON(http.StatusOK, gin.H{"data": nil, "errors": []gin.H{{"message": msg}}})
		return
	}

	vars := body.Variables
	var data any
	switch op {
	case "Runs":
		data = f.runsData(vars)
	case "Run":
		data = f.runData(vars)
	case "RunOutputArtifacts":
		data = f.runArtifactsData(vars)
	case "LinkArtifact":
		data = f.linkArtifact(vars)
	case "RegistryArtifacts":
		data = f.registryArtifactsData(vars)
	case "UpsertView":
		data = f.upsertView(vars)
	default:
		c.JSON(http.StatusOK, gin.H{"errors": []gin.H{{"message": "unknown operation " + op}}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}

func str(vars map[string]any, key string) string {
	s, _ := vars[key].(string)
	return s
}

func intVar(vars map[string]any, key string, fallback int) int {
	if n, ok := vars[key].(float64); ok && n > 0 {
		return int(n)
	}
	return fallback
}

// paginate slices items by the numeric cursor and reports the next one.
func paginate(total int, vars map[string]any) (start, end int, next string, hasNext bool) {
	perPage := intVar(vars, "perPage", 50)
	if cursor := str(vars, "cursor"); cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	start = min(start, total)
	end = min(start+perPage, total)
	hasNext = end < total
	if hasNext {
		next = strconv.Itoa(end)
	}
	return start, end, next, hasNext
}

func runJSON(r *domain.Run) gin.H {
	return gin.H{
		"id":          r.StorageID,
		"name":        r.ID,
		"displayName": r.Name,
		"tags":        r.Tags,
		"state":       r.State,
		"createdAt":   r.CreatedAt.UTC().Format("2006-01-02T15:04:05"),
	}
}

func artifactJSON(a *domain.Artifact) gin.H {
	aliases := make([]gin.H, 0, len(a.Aliases))
	for _, alias := range a.Aliases {
		aliases = append(aliases, gin.H{"alias": alias})
	}
	return gin.H{
		"id":               a.ID,
		"state":            a.State,
		"versionIndex":     a.VersionIndex,
		"createdAt":        a.CreatedAt.UTC().Format(time.RFC3339),
		"artifactType":     gin.H{"name": a.Type},
		"artifactSequence": gin.H{"name": a.Collection},
		"aliases":          aliases,
	}
}

func (f *FakeWandB) projectRuns(entity, project string) []*domain.Run {
	var out []*domain.Run
	for _, r := range f.runs {
		if r.Entity == entity && r.Project == project {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeWandB) findRun(entity, project, id string) *domain.Run {
	for _, r := range f.projectRuns(entity, project) {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *FakeWandB) runsData(vars map[string]any) gin.H {
	var filters struct {
		Tags struct {
			In []string `json:"$in"`
		} `json:"tags"`
	}
	_ = json.Unmarshal([]byte(str(vars, "filters")), &filters)

	var matched []*domain.Run
	for _, r := range f.projectRuns(str(vars, "entity"), str(vars, "project")) {
		if len(filters.Tags.In) == 0 || slices.ContainsFunc(filters.Tags.In, r.HasTag) {
			matched = append(matched, r)
		}
	}

	start, end, next, hasNext := paginate(len(matched), vars)
	edges := make([]gin.H, 0, end-start)
	for i, r := range matched[start:end] {
		edges = append(edges, gin.H{"node": runJSON(r), "cursor": strconv.Itoa(start + i + 1)})
	}

	return gin.H{"project": gin.H{
		"runCount": len(matched),
		"runs": gin.H{
			"edges":    edges,
			"pageInfo": gin.H{"endCursor": next, "hasNextPage": hasNext},
		},
	}}
}

func (f *FakeWandB) runData(vars map[string]any) gin.H {
	run := f.findRun(str(vars, "entity"), str(vars, "project"), str(vars, "name"))
	if run == nil {
		return gin.H{"project": gin.H{"run": nil}}
	}
	return gin.H{"project": gin.H{"run": runJSON(run)}}
}

func (f *FakeWandB) runArtifactsData(vars map[string]any) gin.H {
	run := f.findRun(str(vars, "entity"), str(vars, "project"), str(vars, "runName"))
	if run == nil {
		return gin.H{"project": gin.H{"run": nil}}
	}

	logged := f.artifacts[run.Path()]
	start, end, next, hasNext := paginate(len(logged), vars)
	edges := make([]gin.H, 0, end-start)
	for i, a := range logged[start:end] {
		edges = append(edges, gin.H{"node": artifactJSON(a), "cursor": strconv.Itoa(start + i + 1)})
	}

	return gin.H{"project": gin.H{"run": gin.H{
		"outputArtifacts": gin.H{
			"totalCount": len(logged),
			"edges":      edges,
			"pageInfo":   gin.H{"endCursor": next, "hasNextPage": hasNext},
		},
	}}}
}

// linkArtifact appends a new registry version. Aliases move from older versions,
// and "latest" always points at the newest link.
func (f *FakeWandB) linkArtifact(vars map[string]any) gin.H {
	var aliases []string
	if raw, ok := vars["aliases"].([]any); ok {
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				aliases = append(aliases, str(m, "alias"))
			}
		}
	}

	path := domain.NewRegistryPath(str(vars, "entityName"), str(vars, "artifactPortfolioName"))
	key := path.String()
	moved := append(slices.Clone(aliases), "latest")
	for _, v := range f.registry[key] {
		v.Aliases = slices.DeleteFunc(v.Aliases, func(a string) bool { return slices.Contains(moved, a) })
	}

	version := &domain.ArtifactVersion{
		ID:           fmt.Sprintf("link-%d", len(f.links)+1),
		Entity:       path.Entity,
		Project:      str(vars, "projectName"),
		Collection:   path.Collection,
		VersionIndex: len(f.registry[key]),
		Aliases:      moved,
		CreatedAt:    time.Now().UTC(),
	}
	f.registry[key] = append(f.registry[key], version)
	f.links = append(f.links, Link{
		ArtifactID: str(vars, "artifactID"),
		Entity:     path.Entity,
		Project:    str(vars, "projectName"),
		Collection: path.Collection,
		Aliases:    aliases,
	})

	return gin.H{"linkArtifact": gin.H{"versionIndex": version.VersionIndex}}
}

func (f *FakeWandB) registryArtifactsData(vars map[string]any) gin.H {
	if str(vars, "projectName") != domain.RegistryProject {
		return gin.H{"project": nil}
	}
	path := domain.NewRegistryPath(str(vars, "entityName"), str(vars, "collection"))
	versions, ok := f.registry[path.String()]
	if !ok || str(vars, "artifactType") != domain.ArtifactTypeModel {
		return gin.H{"project": gin.H{"artifactType": gin.H{"artifactCollection": nil}}}
	}

	// Newest first, like the service.
	ordered := slices.Clone(versions)
	slices.Reverse(ordered)

	start, end, next, hasNext := paginate(len(ordered), vars)
	edges := make([]gin.H, 0, end-start)
	for i, v := range ordered[start:end] {
		node := artifactJSON(&domain.Artifact{
			ID:           v.ID,
			Type:         domain.ArtifactTypeModel,
			Collection:   v.Collection,
			VersionIndex: v.VersionIndex,
			Aliases:      v.Aliases,
			CreatedAt:    v.CreatedAt,
		})
		edges = append(edges, gin.H{"node": node, "version": v.Version(), "cursor": strconv.Itoa(start + i + 1)})
	}

	return gin.H{"project": gin.H{"artifactType": gin.H{"artifactCollection": gin.H{
		"name": path.Collection,
		"artifacts": gin.H{
			"edges":    edges,
			"pageInfo": gin.H{"endCursor": next, "hasNextPage": hasNext},
		},
	}}}}
}

func (f *FakeWandB) upsertView(vars map[string]any) gin.H {
	view := SavedView{
		// View ids are base64 with padding, as the service returns them.
		ID:          fmt.Sprintf("VmlldzoxMDA%d==", len(f.views)+1),
		Entity:      str(vars, "entityName"),
		Project:     str(vars, "projectName"),
		Name:        str(vars, "name"),
		Title:       str(vars, "displayName"),
		Description: str(vars, "description"),
		Spec:        json.RawMessage(str(vars, "spec")),
	}
	f.views = append(f.views, view)

	return gin.H{"upsertView": gin.H{
		"view": gin.H{
			"id":          view.ID,
			"name":        view.Name,
			"displayName": view.Title,
			"description": view.Description,
			"project":     gin.H{"name": view.Project, "entityName": view.Entity},
		},
		"inserted": true,
	}}
}
