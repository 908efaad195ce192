// Package selection implements the content diversity and selection engine:
// pillar selection, catalog item scoring and weighted sampling.
package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Monear/rental-village-social-bot/internal/modules/strategy"
)

// ErrInvalidDistribution indicates a weight map with no mass reached the
// sampler. This is a programming-contract failure in the caller's fallback
// logic, not a recoverable runtime condition - do not catch and continue.
var ErrInvalidDistribution = errors.New("invalid distribution: no positive weights")

// ErrNoEligibleCandidates indicates that after retrying every configured
// pillar, no catalog item survived the hard filters. It signals an
// operational problem (e.g., the whole catalog is unavailable) and is
// reported to the caller rather than papered over with a default pick.
var ErrNoEligibleCandidates = errors.New("no eligible candidates across all pillars")

// ConfigurationError reports an invalid strategy configuration. It is
// surfaced before any randomness is consumed so the operator can fix the
// configuration without side effects.
type ConfigurationError struct {
	Violations []string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid strategy configuration: %s", strings.Join(e.Violations, "; "))
}

// NewConfigurationError builds a ConfigurationError from a validation result
func NewConfigurationError(result strategy.ValidationResult) *ConfigurationError {
	return &ConfigurationError{Violations: result.Violations}
}
