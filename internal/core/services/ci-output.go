package services

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	ports "wandb-ci/internal/core/ports/output"
)

const (
	OutputReportURL   = "REPORT_URL"
	OutputRegistryURL = "REGISTRY_URL"
)

// emitOutput writes key=value to the CI output when running in CI.
func emitOutput(out ports.CIOutput, key, value string) error {
	if out == nil || !out.IsAvailable() {
		log.WithField("key", key).Debug("not running in CI, skipping output")
		return nil
	}
	if err := out.Set(key, value); err != nil {
		return fmt.Errorf("write %s to CI output: %w", key, err)
	}
	return nil
}
