package domain

import "errors"

// ============================================================================
// Configuration Errors
// ============================================================================

var (
	ErrMissingAPIKey      = errors.New("you must set the WANDB_API_KEY environment variable")
	ErrMissingRunID       = errors.New("you must set the RUN_ID environment variable")
	ErrMissingRegistryTag = errors.New("you must set the REGISTRY_TAG environment variable")
	ErrMissingRunTag      = errors.New("you must set the RUN_TAG environment variable")
	ErrMissingOutputPath  = errors.New("CI is set but GITHUB_OUTPUT is empty")
)

// ============================================================================
// Run Lookup Errors
// ============================================================================

var (
	ErrInvalidRunID    = errors.New("run ID is required")
	ErrProjectNotFound = errors.New("project not found")
	ErrRunNotFound     = errors.New("run not found")
	ErrNoTaggedRun     = errors.New("no run found for tag")
	ErrAmbiguousTag    = errors.New("multiple runs found for tag")
)

// ============================================================================
// Registry Errors
// ============================================================================

var (
	ErrNoModelArtifacts   = errors.New("no artifacts of type model found")
	ErrNoRegistryVersions = errors.New("no versions found in registry collection")
)

// ============================================================================
// Report / Output Errors
// ============================================================================

var (
	ErrReportNotSaved    = errors.New("report has not been saved")
	ErrInvalidOutputLine = errors.New("invalid CI output line")
	ErrTrackingAPI       = errors.New("tracking service request failed")
)
