package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultEvidenceWindow      = 10
	DefaultSimilarityThreshold = 0.75
	DefaultParallelFetches     = 4
	DefaultRegistrySize        = 4096
	DefaultIncidentTimeout     = 2 * time.Minute

	// Discord refuses to return more than 100 messages per request.
	maxEvidenceWindow = 100
)

// EvidenceConfig tunes the near-duplicate search. The values only affect how
// much evidence is found, never whether an incident is acted on correctly.
type EvidenceConfig struct {
	Window int `yaml:"window"`
	// Omitting the key keeps the default; an explicit value must lie in (0, 1].
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxParallelFetches  int     `yaml:"max_parallel_fetches"`
}

type EngineConfig struct {
	IncidentTimeoutSeconds int `yaml:"incident_timeout_seconds"`
}

type ApprovalConfig struct {
	RegistrySize int `yaml:"registry_size"`
}

func (e EvidenceConfig) normalized() EvidenceConfig {
	if e.Window <= 0 {
		e.Window = DefaultEvidenceWindow
	}
	if e.Window > maxEvidenceWindow {
		e.Window = maxEvidenceWindow
	}
	if e.MaxParallelFetches <= 0 {
		e.MaxParallelFetches = DefaultParallelFetches
	}
	return e
}

var ErrBadThreshold = errors.New("evidence.similarity_threshold must be greater than 0 and at most 1")

func (e EvidenceConfig) validate() error {
	if e.SimilarityThreshold <= 0 || e.SimilarityThreshold > 1 {
		return fmt.Errorf("%w, got %g", ErrBadThreshold, e.SimilarityThreshold)
	}
	return nil
}

// IncidentTimeout bounds every platform call made on behalf of one incident.
func (e EngineConfig) IncidentTimeout() time.Duration {
	if e.IncidentTimeoutSeconds <= 0 {
		return DefaultIncidentTimeout
	}
	return time.Duration(e.IncidentTimeoutSeconds) * time.Second
}
