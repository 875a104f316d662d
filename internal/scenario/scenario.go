package scenario

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/createcheck/detect"
	"github.com/roach88/createcheck/reconcile"
)

// Scenario defines one creation assertion and the database it runs against.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Strategy selects the change-detection strategy. Empty means the
	// default.
	Strategy string `yaml:"strategy,omitempty"`

	// CreatedAtColumn overrides the creation-timestamp column.
	CreatedAtColumn string `yaml:"created_at_column,omitempty"`

	// Resolution is the precision the timestamp column keeps, as a Go
	// duration ("1s" for CURRENT_TIMESTAMP). Empty means milliseconds.
	Resolution string `yaml:"resolution,omitempty"`

	// Types maps display names to tables.
	Types map[string]TypeSpec `yaml:"types"`

	// Schema holds extra DDL applied after the fixture schema.
	Schema []string `yaml:"schema,omitempty"`

	// Setup statements run before the assertion starts.
	Setup []string `yaml:"setup,omitempty"`

	// Block statements run inside the assertion. An empty block is allowed.
	Block []string `yaml:"block,omitempty"`

	// Expect declares the assertion and the outcome it should reach.
	Expect ExpectClause `yaml:"expect"`
}

// TypeSpec maps a record type to storage.
type TypeSpec struct {
	Table      string `yaml:"table"`
	Plural     string `yaml:"plural,omitempty"`
	PrimaryKey string `yaml:"primary_key,omitempty"`
}

// ExpectClause is the assertion plus its wanted outcome.
type ExpectClause struct {
	// Counts is the exact number of new records per type name.
	Counts map[string]int `yaml:"counts"`

	// Attributes lists one template per expected record, per type name.
	Attributes map[string][]map[string]any `yaml:"attributes,omitempty"`

	// Negate asserts that the block does NOT create what Counts describes.
	Negate bool `yaml:"negate,omitempty"`

	// Want is the state the evaluation should end in. Defaults to "passed".
	// "config_error" expects the assertion to be rejected before the block
	// runs.
	Want string `yaml:"want,omitempty"`
}

// WantConfigError is the Want value for assertions rejected as malformed.
const WantConfigError = "config_error"

// Load reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse parses scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "count:" vs "counts:"
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &s, nil
}

// Validate checks that required fields are present and consistent.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Types) == 0 {
		return fmt.Errorf("types map is required and must be non-empty")
	}
	for _, name := range sortedKeys(s.Types) {
		if s.Types[name].Table == "" {
			return fmt.Errorf("types.%s: table is required", name)
		}
	}

	if s.Strategy != "" {
		if !slices.Contains(detect.Keys(), detect.Key(s.Strategy)) {
			return &detect.UnknownStrategyError{Key: detect.Key(s.Strategy), Valid: detect.Keys()}
		}
	}

	if s.Resolution != "" {
		res, err := time.ParseDuration(s.Resolution)
		if err != nil {
			return fmt.Errorf("resolution: %w", err)
		}
		if res <= 0 {
			return fmt.Errorf("resolution must be positive, got %s", s.Resolution)
		}
	}

	if len(s.Expect.Counts) == 0 {
		return fmt.Errorf("expect.counts is required and must be non-empty")
	}
	for _, name := range sortedKeys(s.Expect.Counts) {
		if _, ok := s.Types[name]; !ok {
			return fmt.Errorf("expect.counts.%s: type is not declared", name)
		}
	}
	for _, name := range sortedKeys(s.Expect.Attributes) {
		if _, ok := s.Types[name]; !ok {
			return fmt.Errorf("expect.attributes.%s: type is not declared", name)
		}
	}

	if !validWant(s.want()) {
		return fmt.Errorf("expect.want: unknown state %q", s.Expect.Want)
	}

	return nil
}

// resolution returns the configured timestamp precision. Call after
// Validate.
func (s *Scenario) resolution() time.Duration {
	if s.Resolution == "" {
		return detect.DefaultResolution
	}
	res, _ := time.ParseDuration(s.Resolution)
	return res
}

func (s *Scenario) want() string {
	if s.Expect.Want == "" {
		return reconcile.StatePassed.String()
	}
	return s.Expect.Want
}

func validWant(want string) bool {
	if want == WantConfigError {
		return true
	}
	state, err := reconcile.ParseState(want)
	return err == nil && state.Terminal()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
