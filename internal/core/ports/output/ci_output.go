package ports

// CIOutput appends KEY=value lines consumed by the calling pipeline.
type CIOutput interface {
	Set(key, value string) error

	// IsAvailable reports whether the helper runs in CI with an output file.
	IsAvailable() bool
}
