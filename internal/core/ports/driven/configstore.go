package driven

import "github.com/storysift/storysift-cli/internal/core/domain"

// ConfigStore loads and persists the extraction configuration.
type ConfigStore interface {
	// Load returns the stored configuration, or the defaults when no
	// configuration has been saved yet.
	Load() (domain.ExtractionConfig, error)

	// Save persists the configuration.
	Save(cfg domain.ExtractionConfig) error

	// Path returns the backing file path, for diagnostics.
	Path() string
}
