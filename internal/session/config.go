package session

import "time"

// Config carries the tunables for session building. Pattern enablement
// is explicit configuration handed to the builder, not shared mutable
// state.
type Config struct {
	// EnabledPatterns limits which patterns can be drilled. Empty means
	// every pattern is enabled.
	EnabledPatterns []string

	// DueShare and MissShare are the fractions of the requested size
	// drawn from the due and recent-miss pools.
	DueShare  float64
	MissShare float64

	// NewItemCap bounds brand-new items per build, regardless of size.
	NewItemCap int

	// MissWindow is how far back the recent-miss pool looks.
	MissWindow time.Duration

	// InsightGapMin and InsightGapMax bound the randomized number of
	// graded items between interleaved insight items.
	InsightGapMin int
	InsightGapMax int

	// EndWindow is how far back End looks for attempts when computing
	// session metrics.
	EndWindow time.Duration
}

// DefaultConfig returns the standard session tunables.
func DefaultConfig() Config {
	return Config{
		DueShare:      0.6,
		MissShare:     0.2,
		NewItemCap:    3,
		MissWindow:    48 * time.Hour,
		InsightGapMin: 4,
		InsightGapMax: 5,
		EndWindow:     24 * time.Hour,
	}
}

// PatternEnabled reports whether a pattern may be drilled under this config.
func (c Config) PatternEnabled(pattern string) bool {
	if len(c.EnabledPatterns) == 0 {
		return true
	}
	for _, p := range c.EnabledPatterns {
		if p == pattern {
			return true
		}
	}
	return false
}
