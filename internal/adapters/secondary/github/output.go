package github

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"wandb-ci/internal/config"
	"wandb-ci/internal/core/domain"
	ports "wandb-ci/internal/core/ports/output"
)

type outputWriter struct {
	path    string
	enabled bool
}

// NewOutputWriter creates a GitHub Actions output adapter. It is a no-op
// outside CI.
func NewOutputWriter(cfg *config.CIConfig) ports.CIOutput {
	return &outputWriter{
		path:    cfg.OutputPath,
		enabled: cfg.Enabled,
	}
}

func (w *outputWriter) IsAvailable() bool {
	return w.enabled
}

// Set appends one key=value line to the output file.
func (w *outputWriter) Set(key, value string) error {
	if !w.enabled {
		return nil
	}
	if w.path == "" {
		return domain.ErrMissingOutputPath
	}
	if strings.ContainsAny(key, "\r\n=") || strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s", domain.ErrInvalidOutputLine, key)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open CI output file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
		return fmt.Errorf("write CI output file: %w", err)
	}

	log.WithFields(log.Fields{
		"key":  key,
		"file": w.path,
	}).Debug("wrote CI output")
	return nil
}

// Ensure interface compliance
var _ ports.CIOutput = (*outputWriter)(nil)
