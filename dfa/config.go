package dfa

// Config bounds the work done by subset construction.
type Config struct {
	// MaxStates is the maximum number of DFA states over all instances,
	// including the EOF state.
	//
	// Default: 1,000,000 states
	MaxStates int

	// DeterminizationLimit is the maximum number of NFA states folded into
	// a single DFA state.
	//
	// Default: 100,000 NFA states
	DeterminizationLimit int
}

// DefaultConfig returns a configuration with limits far above what
// hand-written rule sets need.
func DefaultConfig() Config {
	return Config{
		MaxStates:            1_000_000,
		DeterminizationLimit: 100_000,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxStates <= 1 {
		return &DFAError{
			Kind:    InvalidConfig,
			Message: "MaxStates must be > 1",
		}
	}
	if c.DeterminizationLimit <= 0 {
		return &DFAError{
			Kind:    InvalidConfig,
			Message: "DeterminizationLimit must be > 0",
		}
	}
	return nil
}

// WithMaxStates returns a new config with the specified max states
func (c Config) WithMaxStates(maxStates int) Config {
	c.MaxStates = maxStates
	return c
}

// WithDeterminizationLimit returns a new config with the specified limit
func (c Config) WithDeterminizationLimit(limit int) Config {
	c.DeterminizationLimit = limit
	return c
}
