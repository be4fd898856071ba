package classifier

import "github.com/okian/touchgest/internal/domain/model"

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithBounds sets the calibrated screen rectangle used for border detection.
func WithBounds(b model.Bounds) Option {
	return func(c *Classifier) {
		c.bounds = b
	}
}

// WithMinEdgeDistance sets the minimum path length of a border swipe.
func WithMinEdgeDistance(d float64) Option {
	return func(c *Classifier) {
		if d >= 0 {
			c.minEdgeDistance = d
		}
	}
}
