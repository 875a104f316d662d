package detect

import "time"

// DefaultColumn is the creation-timestamp column used when none is configured.
const DefaultColumn = "created_at"

// DefaultResolution is the timestamp precision used when none is configured.
// It matches stores that keep milliseconds.
const DefaultResolution = time.Millisecond

// Clock reports the current instant. The timestamp strategy reads it once,
// before the block runs.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Config carries the settings the strategies read.
type Config struct {
	// Column is the creation-timestamp attribute.
	Column string

	// Clock supplies the start instant for the timestamp strategy.
	Clock Clock

	// Resolution is the precision of the stored timestamps. It must be at
	// least as coarse as the store keeps them: a column holding whole
	// seconds needs time.Second. A coarser value is always safe.
	Resolution time.Duration
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		Column:     DefaultColumn,
		Clock:      SystemClock{},
		Resolution: DefaultResolution,
	}
}

// WithColumn returns a copy of c using column.
func (c Config) WithColumn(column string) Config {
	c.Column = column
	return c
}

// WithClock returns a copy of c using clock.
func (c Config) WithClock(clock Clock) Config {
	c.Clock = clock
	return c
}

// WithResolution returns a copy of c comparing timestamps at res.
func (c Config) WithResolution(res time.Duration) Config {
	c.Resolution = res
	return c
}

// normalized fills zero fields with defaults.
func (c Config) normalized() Config {
	if c.Column == "" {
		c.Column = DefaultColumn
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Resolution <= 0 {
		c.Resolution = DefaultResolution
	}
	return c
}

// Cleaner is the part of testing.TB that OverrideColumn needs.
type Cleaner interface {
	Helper()
	Cleanup(func())
}

// OverrideColumn sets cfg.Column for the rest of the test and restores the
// previous value when the test finishes. Pass the test's *testing.T.
func OverrideColumn(tb Cleaner, cfg *Config, column string) {
	tb.Helper()
	previous := cfg.Column
	cfg.Column = column
	tb.Cleanup(func() { cfg.Column = previous })
}
