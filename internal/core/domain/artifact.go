package domain

import (
	"fmt"
	"slices"
	"time"
)

// ArtifactTypeModel is the artifact type promoted into the model registry.
const ArtifactTypeModel = "model"

// Artifact is a versioned object logged against a run.
type Artifact struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Collection   string    `json:"collection"`
	VersionIndex int       `json:"version_index"`
	Aliases      []string  `json:"aliases"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Artifact) IsModel() bool {
	return a.Type == ArtifactTypeModel
}

// QualifiedName renders collection:vN as shown in the W&B UI.
func (a *Artifact) QualifiedName() string {
	return fmt.Sprintf("%s:v%d", a.Collection, a.VersionIndex)
}

// FilterByType keeps artifacts of the given type, preserving order.
func FilterByType(artifacts []*Artifact, artifactType string) []*Artifact {
	var out []*Artifact
	for _, a := range artifacts {
		if a.Type == artifactType {
			out = append(out, a)
		}
	}
	return out
}

// LatestArtifact returns the artifact with the greatest CreatedAt. Ties go to the
// artifact later in the slice. Returns nil for an empty slice.
func LatestArtifact(artifacts []*Artifact) *Artifact {
	var latest *Artifact
	for _, a := range artifacts {
		if latest == nil || !a.CreatedAt.Before(latest.CreatedAt) {
			latest = a
		}
	}
	return latest
}

// ArtifactVersion is one version inside a registry collection.
type ArtifactVersion struct {
	ID           string    `json:"id"`
	Entity       string    `json:"entity"`
	Project      string    `json:"project"`
	Collection   string    `json:"collection"`
	VersionIndex int       `json:"version_index"`
	Aliases      []string  `json:"aliases"`
	CreatedAt    time.Time `json:"created_at"`
}

// Version renders the version label, e.g. "v3".
func (v *ArtifactVersion) Version() string {
	return fmt.Sprintf("v%d", v.VersionIndex)
}

func (v *ArtifactVersion) HasAlias(alias string) bool {
	return slices.Contains(v.Aliases, alias)
}

// SelectVersion picks the version carrying alias, falling back to the greatest
// VersionIndex when no version carries it. Returns nil for an empty slice.
func SelectVersion(versions []*ArtifactVersion, alias string) *ArtifactVersion {
	var newest *ArtifactVersion
	for _, v := range versions {
		if alias != "" && v.HasAlias(alias) {
			return v
		}
		if newest == nil || v.VersionIndex > newest.VersionIndex {
			newest = v
		}
	}
	return newest
}
