package cli

import (
	"errors"

	"wandb-ci/internal/core/domain"
)

const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitLookup        = 3
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK

	// Configuration errors
	case errors.Is(err, domain.ErrMissingAPIKey),
		errors.Is(err, domain.ErrMissingRunID),
		errors.Is(err, domain.ErrMissingRegistryTag),
		errors.Is(err, domain.ErrMissingRunTag),
		errors.Is(err, domain.ErrMissingOutputPath):
		return ExitConfiguration

	// Lookup / invariant errors
	case errors.Is(err, domain.ErrInvalidRunID),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrNoTaggedRun),
		errors.Is(err, domain.ErrAmbiguousTag),
		errors.Is(err, domain.ErrNoModelArtifacts),
		errors.Is(err, domain.ErrNoRegistryVersions):
		return ExitLookup

	default:
		return ExitFailure
	}
}
