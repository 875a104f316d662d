package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/createcheck/detect"
	"github.com/roach88/createcheck/match"
	"github.com/roach88/createcheck/record"
)

// Engine evaluates requests against one record source.
//
// An Engine holds no per-evaluation state; every Evaluate call builds a fresh
// Report.
type Engine struct {
	src    record.Source
	config detect.Config
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the change-detection configuration.
func WithConfig(cfg detect.Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine reading src.
func New(src record.Source, opts ...Option) *Engine {
	e := &Engine{
		src:    src,
		config: detect.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs block exactly once and reconciles what it created against
// req.
//
// Returns *ConfigError without running the block when req is malformed or
// names an unknown strategy. Returns the block's error, or a non-expectation
// predicate error, unmodified. Otherwise returns a Report in a terminal
// state.
func (e *Engine) Evaluate(ctx context.Context, req Request, block func() error) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	strategy, err := detect.For(req.Strategy, e.src, e.config)
	if err != nil {
		return nil, &ConfigError{Message: err.Error(), Err: err}
	}

	report := newReport(req)

	e.logger.Debug("capturing new records",
		"strategy", strategyName(req.Strategy),
		"types", len(report.Types),
	)

	created, err := strategy.Capture(ctx, report.Types, block)
	if err != nil {
		return nil, err
	}
	report.Created = created

	report.advance(StateCountsChecked)
	if !e.checkCounts(report) {
		report.advance(StateFailedCounts)
		e.logger.Debug("count mismatch", "types", len(report.Counts))
		return report, nil
	}

	if req.Attributes != nil {
		report.advance(StateAttributesChecked)
		if !e.checkAttributes(report, req.Attributes) {
			report.advance(StateFailedAttributes)
			e.logger.Debug("attribute mismatch")
			return report, nil
		}
	}

	if req.Which != nil {
		report.advance(StatePredicateChecked)
		if err := req.Which(Created(created)); err != nil {
			var expectation *ExpectationError
			if !errors.As(err, &expectation) {
				return nil, err
			}
			report.Predicate = expectation
			report.advance(StateFailedPredicate)
			e.logger.Debug("predicate failed", "message", expectation.Message)
			return report, nil
		}
	}

	report.advance(StatePassed)
	e.logger.Debug("assertion passed")
	return report, nil
}

// checkCounts records a CountMismatch for every type whose new-record count
// differs from the expected count. Returns true when all counts match.
func (e *Engine) checkCounts(report *Report) bool {
	for _, t := range report.Types {
		expected := report.Expected[t]
		actual := len(report.Created[t])
		if actual != expected {
			report.Counts[t] = CountMismatch{Expected: expected, Actual: actual}
		}
	}
	return len(report.Counts) == 0
}

// checkAttributes matches every type that has templates. Returns true when
// no template is missing.
func (e *Engine) checkAttributes(report *Report, attributes map[record.Type][]match.Template) bool {
	ok := true
	for _, t := range report.Types {
		templates, has := attributes[t]
		if !has {
			continue
		}
		result := match.Match(report.Created[t], templates)
		report.Templates[t] = templates
		report.Matches[t] = result
		if !result.OK() {
			ok = false
		}
	}
	return ok
}

func strategyName(key detect.Key) string {
	if key == "" {
		return string(detect.KeyDefault)
	}
	return string(key)
}
