package domain

import (
	"fmt"
	"slices"
	"time"
)

// Run is a single recorded execution of a training or evaluation job.
type Run struct {
	ID        string    `json:"id"`         // short run id used in entity/project/run_id
	Name      string    `json:"name"`       // display name
	StorageID string    `json:"storage_id"` // service-internal node id
	Entity    string    `json:"entity"`
	Project   string    `json:"project"`
	Tags      []string  `json:"tags"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Path returns the entity/project/run_id address of the run.
func (r *Run) Path() string {
	return fmt.Sprintf("%s/%s/%s", r.Entity, r.Project, r.ID)
}

func (r *Run) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}
