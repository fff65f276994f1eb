// Package clean implements the column-independent cleaning stages. Every stage takes a
// table.Table by value, works on a clone, and returns the new table with a stats value.
package clean

import (
	"github.com/KaramelBytes/datatidy-cli/internal/logger"
)

// DefaultZScoreThreshold is the |z| above which a value counts as an outlier.
const DefaultZScoreThreshold = 3.0

// Cleaner holds immutable stage configuration and the diagnostic sink.
type Cleaner struct {
	log             logger.Logger
	zscoreThreshold float64
}

type Option func(*Cleaner)

// WithZScoreThreshold overrides DefaultZScoreThreshold. Non-positive values are ignored.
func WithZScoreThreshold(v float64) Option {
	return func(c *Cleaner) {
		if v > 0 {
			c.zscoreThreshold = v
		}
	}
}

func New(log logger.Logger, opts ...Option) *Cleaner {
	c := &Cleaner{log: logger.OrNop(log), zscoreThreshold: DefaultZScoreThreshold}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ZScoreThreshold returns the configured threshold.
func (c *Cleaner) ZScoreThreshold() float64 { return c.zscoreThreshold }
