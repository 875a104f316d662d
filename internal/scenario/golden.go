package scenario

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Render formats a result as the text stored in golden files.
func Render(result *Result) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "scenario: %s\n", result.Name)
	fmt.Fprintf(&buf, "assertion: %s\n", result.Description)
	fmt.Fprintf(&buf, "want: %s\n", result.Want)
	fmt.Fprintf(&buf, "state: %s\n", result.State)
	if len(result.Path) > 0 {
		fmt.Fprintf(&buf, "path: %s\n", strings.Join(result.Path, " -> "))
	}
	for _, name := range sortedKeys(result.Created) {
		fmt.Fprintf(&buf, "created %s: %d\n", name, result.Created[name])
	}
	if result.Message != "" {
		fmt.Fprintf(&buf, "message:\n%s\n", result.Message)
	}

	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares the rendered result against
// a golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the rendering doesn't match.
func RunWithGolden(t *testing.T, s *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), s, opts...)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, Render(result))

	return result, nil
}
