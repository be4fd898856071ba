package calibration

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithSamples sets the number of swipes collected per edge.
func WithSamples(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.samples = n
		}
	}
}
