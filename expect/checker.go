package expect

import (
	"io"
	"log/slog"
	"time"

	"github.com/roach88/createcheck/detect"
	"github.com/roach88/createcheck/match"
	"github.com/roach88/createcheck/reconcile"
	"github.com/roach88/createcheck/record"
)

// Counts is the exact number of new records expected per type.
type Counts map[record.Type]int

// Attributes lists one template per expected new record, per type.
type Attributes map[record.Type][]match.Template

// Created maps each declared type to the records the block created.
type Created = reconcile.Created

// Checker builds assertions against one record source.
//
// The With* methods return a modified copy; a Checker is never mutated after
// construction and may be shared between tests.
type Checker struct {
	src      record.Source
	config   detect.Config
	strategy detect.Key
	logger   *slog.Logger
}

// New creates a checker reading src with the default configuration.
func New(src record.Source) *Checker {
	return &Checker{
		src:    src,
		config: detect.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithColumn returns a copy of c using column as the creation timestamp.
func (c *Checker) WithColumn(column string) *Checker {
	cp := *c
	cp.config = cp.config.WithColumn(column)
	return &cp
}

// WithClock returns a copy of c reading the start instant from clock.
func (c *Checker) WithClock(clock detect.Clock) *Checker {
	cp := *c
	cp.config = cp.config.WithClock(clock)
	return &cp
}

// WithResolution returns a copy of c comparing creation timestamps at res.
// Use the precision the store keeps, e.g. time.Second for a column filled by
// CURRENT_TIMESTAMP.
func (c *Checker) WithResolution(res time.Duration) *Checker {
	cp := *c
	cp.config = cp.config.WithResolution(res)
	return &cp
}

// WithConfig returns a copy of c using cfg.
func (c *Checker) WithConfig(cfg detect.Config) *Checker {
	cp := *c
	cp.config = cfg
	return &cp
}

// WithStrategy returns a copy of c using the strategy registered under key.
// Unknown keys are reported when an assertion is evaluated.
func (c *Checker) WithStrategy(key detect.Key) *Checker {
	cp := *c
	cp.strategy = key
	return &cp
}

// WithLogger returns a copy of c logging to logger.
func (c *Checker) WithLogger(logger *slog.Logger) *Checker {
	cp := *c
	cp.logger = logger
	return &cp
}

// Config returns the change-detection configuration.
func (c *Checker) Config() detect.Config {
	return c.config
}

// Creates starts an assertion that the block creates exactly counts.
func (c *Checker) Creates(counts Counts) *Assertion {
	copied := make(map[record.Type]int, len(counts))
	for t, n := range counts {
		copied[t] = n
	}
	return &Assertion{
		checker: c,
		req: reconcile.Request{
			Counts:   copied,
			Strategy: c.strategy,
		},
	}
}

// CreatesA starts an assertion that the block creates exactly one record of
// type t.
func (c *Checker) CreatesA(t record.Type) *Assertion {
	return c.Creates(Counts{t: 1})
}

// CreatesAn is CreatesA.
func (c *Checker) CreatesAn(t record.Type) *Assertion {
	return c.CreatesA(t)
}

// CreatesANew is CreatesA.
func (c *Checker) CreatesANew(t record.Type) *Assertion {
	return c.CreatesA(t)
}

func (c *Checker) engine() *reconcile.Engine {
	return reconcile.New(c.src,
		reconcile.WithConfig(c.config),
		reconcile.WithLogger(c.logger),
	)
}
