package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/createcheck/detect"
	"github.com/roach88/createcheck/internal/store"
	"github.com/roach88/createcheck/match"
	"github.com/roach88/createcheck/reconcile"
	"github.com/roach88/createcheck/record"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true when the evaluation ended in the wanted state.
	Pass bool `json:"pass"`

	// Want is the wanted state.
	Want string `json:"want"`

	// State is the state the evaluation ended in, or "config_error".
	State string `json:"state"`

	// Path lists every state entered.
	Path []string `json:"path,omitempty"`

	// Description renders the assertion, e.g. "create 1 Person".
	Description string `json:"description"`

	// Created is the number of new records per type name.
	Created map[string]int `json:"created,omitempty"`

	// Message is the rendered failure message of the assertion. For a
	// negated scenario it is the negated message, present only when the
	// block did create what it should not have.
	Message string `json:"message,omitempty"`
}

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger passed to the engine. Logs are discarded by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

// WithClock sets the clock the timestamp strategy reads.
func WithClock(clock detect.Clock) Option {
	return func(r *runner) {
		r.clock = clock
	}
}

type runner struct {
	logger *slog.Logger
	clock  detect.Clock
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database with the fixture schema
// 2. Apply schema and setup statements
// 3. Evaluate the assertion with the block statements as the block
// 4. Compare the reached state against the wanted one
//
// Returns an error when the scenario cannot be executed: a bad statement, an
// invalid attribute value, or a store failure.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	r := &runner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  detect.SystemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	req, err := s.request()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.Exec(ctx, s.Schema...); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := st.Exec(ctx, s.Setup...); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}

	cfg := detect.DefaultConfig().WithClock(r.clock).WithResolution(s.resolution())
	if s.CreatedAtColumn != "" {
		cfg = cfg.WithColumn(s.CreatedAtColumn)
	}
	engine := reconcile.New(st.Source(),
		reconcile.WithConfig(cfg),
		reconcile.WithLogger(r.logger),
	)

	result := &Result{
		Name:        s.Name,
		Want:        s.want(),
		Description: req.Description(),
	}

	report, err := engine.Evaluate(ctx, req, func() error {
		if err := st.Exec(ctx, s.Block...); err != nil {
			return fmt.Errorf("block: %w", err)
		}
		return nil
	})
	if reconcile.IsConfigError(err) {
		result.State = WantConfigError
		result.Message = err.Error()
		result.Pass = result.State == result.Want
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	result.State = report.State.String()
	for _, state := range report.Path {
		result.Path = append(result.Path, state.String())
	}
	result.Created = make(map[string]int, len(report.Types))
	for _, t := range report.Types {
		result.Created[t.Name] = len(report.Created[t])
	}

	switch {
	case s.Expect.Negate && report.Passed():
		result.Message = report.NegatedFailureMessage()
	case !s.Expect.Negate:
		result.Message = report.FailureMessage()
	}
	result.Pass = result.State == result.Want

	return result, nil
}

// request builds the engine request.
func (s *Scenario) request() (reconcile.Request, error) {
	types := make(map[string]record.Type, len(s.Types))
	for name, spec := range s.Types {
		types[name] = record.Type{
			Name:       name,
			Plural:     spec.Plural,
			Table:      spec.Table,
			PrimaryKey: spec.PrimaryKey,
		}
	}

	req := reconcile.Request{
		Counts:   make(map[record.Type]int, len(s.Expect.Counts)),
		Strategy: detect.Key(s.Strategy),
	}
	for name, n := range s.Expect.Counts {
		req.Counts[types[name]] = n
	}

	if s.Expect.Attributes != nil {
		req.Attributes = make(map[record.Type][]match.Template, len(s.Expect.Attributes))
		for _, name := range sortedKeys(s.Expect.Attributes) {
			for i, attrs := range s.Expect.Attributes[name] {
				tmpl, err := template(attrs)
				if err != nil {
					return reconcile.Request{}, fmt.Errorf("expect.attributes.%s[%d]: %w", name, i, err)
				}
				req.Attributes[types[name]] = append(req.Attributes[types[name]], tmpl)
			}
		}
	}

	return req, nil
}
