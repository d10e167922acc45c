package wandb

import (
	"time"

	"wandb-ci/internal/core/domain"
)

// W&B GraphQL response structures

type pageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

type runNode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Tags        []string `json:"tags"`
	State       string   `json:"state"`
	CreatedAt   string   `json:"createdAt"`
}

func (n *runNode) toDomain(entity, project string) *domain.Run {
	return &domain.Run{
		ID:        n.Name,
		Name:      n.DisplayName,
		StorageID: n.ID,
		Entity:    entity,
		Project:   project,
		Tags:      n.Tags,
		State:     n.State,
		CreatedAt: parseTime(n.CreatedAt),
	}
}

type runsData struct {
	Project *struct {
		RunCount int `json:"runCount"`
		Runs     struct {
			Edges []struct {
				Node   runNode `json:"node"`
				Cursor string  `json:"cursor"`
			} `json:"edges"`
			PageInfo pageInfo `json:"pageInfo"`
		} `json:"runs"`
	} `json:"project"`
}

type runData struct {
	Project *struct {
		Run *runNode `json:"run"`
	} `json:"project"`
}

type namedNode struct {
	Name string `json:"name"`
}

type aliasNode struct {
	Alias string `json:"alias"`
}

type artifactNode struct {
	ID               string      `json:"id"`
	State            string      `json:"state"`
	VersionIndex     *int        `json:"versionIndex"`
	CreatedAt        string      `json:"createdAt"`
	ArtifactType     namedNode   `json:"artifactType"`
	ArtifactSequence namedNode   `json:"artifactSequence"`
	Aliases          []aliasNode `json:"aliases"`
}

func (n *artifactNode) aliases() []string {
	out := make([]string, 0, len(n.Aliases))
	for _, a := range n.Aliases {
		out = append(out, a.Alias)
	}
	return out
}

func (n *artifactNode) versionIndex() int {
	if n.VersionIndex == nil {
		return 0
	}
	return *n.VersionIndex
}

func (n *artifactNode) toDomain() *domain.Artifact {
	return &domain.Artifact{
		ID:           n.ID,
		Type:         n.ArtifactType.Name,
		Collection:   n.ArtifactSequence.Name,
		VersionIndex: n.versionIndex(),
		Aliases:      n.aliases(),
		State:        n.State,
		CreatedAt:    parseTime(n.CreatedAt),
	}
}

func (n *artifactNode) toVersion(path domain.RegistryPath) *domain.ArtifactVersion {
	return &domain.ArtifactVersion{
		ID:           n.ID,
		Entity:       path.Entity,
		Project:      path.Project(),
		Collection:   path.Collection,
		VersionIndex: n.versionIndex(),
		Aliases:      n.aliases(),
		CreatedAt:    parseTime(n.CreatedAt),
	}
}

type artifactConnection struct {
	Edges []struct {
		Node    artifactNode `json:"node"`
		Version string       `json:"version"`
		Cursor  string       `json:"cursor"`
	} `json:"edges"`
	PageInfo pageInfo `json:"pageInfo"`
}

type runArtifactsData struct {
	Project *struct {
		Run *struct {
			OutputArtifacts struct {
				TotalCount int `json:"totalCount"`
				artifactConnection
			} `json:"outputArtifacts"`
		} `json:"run"`
	} `json:"project"`
}

type registryArtifactsData struct {
	Project *struct {
		ArtifactType *struct {
			ArtifactCollection *struct {
				Name      string             `json:"name"`
				Artifacts artifactConnection `json:"artifacts"`
			} `json:"artifactCollection"`
		} `json:"artifactType"`
	} `json:"project"`
}

type linkArtifactData struct {
	LinkArtifact *struct {
		VersionIndex int `json:"versionIndex"`
	} `json:"linkArtifact"`
}

type upsertViewData struct {
	UpsertView *struct {
		View *struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			DisplayName string `json:"displayName"`
			Description string `json:"description"`
			Project     *struct {
				Name       string `json:"name"`
				EntityName string `json:"entityName"`
			} `json:"project"`
		} `json:"view"`
		Inserted bool `json:"inserted"`
	} `json:"upsertView"`
}

// The API returns timestamps both with and without a zone suffix.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
