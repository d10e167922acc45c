package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// RegistryProject is the fixed project that backs the model registry.
const RegistryProject = "model-registry"

// RegistryPath addresses a collection in the model registry.
type RegistryPath struct {
	Entity     string
	Collection string
}

func NewRegistryPath(entity, collection string) RegistryPath {
	return RegistryPath{Entity: entity, Collection: collection}
}

func (p RegistryPath) Project() string {
	return RegistryProject
}

// String renders entity/model-registry/collection.
func (p RegistryPath) String() string {
	return fmt.Sprintf("%s/%s/%s", p.Entity, RegistryProject, p.Collection)
}

// RegistryURL builds the registry browser URL for a version of the collection.
func RegistryURL(appURL string, path RegistryPath, version *ArtifactVersion) string {
	entity := version.Entity
	if entity == "" {
		entity = path.Entity
	}

	query := url.Values{}
	query.Set("selectionPath", path.String())
	query.Set("version", version.Version())

	return fmt.Sprintf("%s/%s/registry/model?%s", strings.TrimRight(appURL, "/"), entity, query.Encode())
}
