package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/createcheck/detect"
	"github.com/roach88/createcheck/internal/testutil"
	"github.com/roach88/createcheck/match"
	"github.com/roach88/createcheck/record"
)

var (
	person = record.Type{Name: "Person", Plural: "People", Table: "people"}
	pet    = record.Type{Name: "Pet", Table: "pets"}
)

type fixture struct {
	src    *testutil.MemSource
	clock  *testutil.TickClock
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.NewTickClock(time.Second)
	src := testutil.NewMemSource(clock)
	eng := New(src,
		WithConfig(detect.DefaultConfig().WithClock(clock)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &fixture{src: src, clock: clock, engine: eng}
}

func (f *fixture) create(t record.Type, attrs map[string]any) func() error {
	return func() error {
		f.src.Create(t, attrs)
		return nil
	}
}

func templates(attrs ...match.Attrs) []match.Template {
	out := make([]match.Template, len(attrs))
	for i, a := range attrs {
		out[i] = a.Template()
	}
	return out
}

func TestEvaluate_ExactCountsPass(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 2, pet: 1},
	}, func() error {
		f.src.Create(person, nil)
		f.src.Create(person, nil)
		f.src.Create(pet, nil)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, []State{StateInit, StateCountsChecked, StatePassed}, report.Path)
	assert.Empty(t, report.FailureMessage())
}

func TestEvaluate_ZeroCountWithNoCreationsPasses(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 0},
	}, func() error { return nil })

	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestEvaluate_CountMismatchNamesOnlyMismatchedTypes(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1, pet: 2},
	}, func() error {
		f.src.Create(person, nil)
		f.src.Create(pet, nil)
		f.src.Create(pet, nil)
		f.src.Create(pet, nil)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, StateFailedCounts, report.State)
	assert.Equal(t, map[record.Type]CountMismatch{pet: {Expected: 2, Actual: 3}}, report.Counts)
	assert.Equal(t, "The block should have created 2 Pets, but created 3.", report.FailureMessage())
}

func TestEvaluate_CountMismatchMessageJoinsTypes(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1, pet: 1},
	}, func() error { return nil })

	require.NoError(t, err)
	assert.Equal(t,
		"The block should have created 1 Person, but created 0. The block should have created 1 Pet, but created 0.",
		report.FailureMessage())
}

func TestEvaluate_RecordsBeforeBlockNotCounted(t *testing.T) {
	f := newFixture(t)
	f.src.Create(person, nil)
	f.clock.Next()

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1},
	}, func() error { return nil })

	require.NoError(t, err)
	assert.Equal(t, StateFailedCounts, report.State)
}

func TestEvaluate_CountMismatchSkipsAttributesAndPredicate(t *testing.T) {
	f := newFixture(t)
	predicateCalled := false

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts:     map[record.Type]int{person: 1},
		Attributes: map[record.Type][]match.Template{person: templates(match.Attrs{"first_name": "Pam"})},
		Which: func(Created) error {
			predicateCalled = true
			return nil
		},
	}, func() error { return nil })

	require.NoError(t, err)
	assert.Equal(t, []State{StateInit, StateCountsChecked, StateFailedCounts}, report.Path)
	assert.Empty(t, report.Matches)
	assert.False(t, predicateCalled)
}

func TestEvaluate_AttributesPass(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts:     map[record.Type]int{person: 1},
		Attributes: map[record.Type][]match.Template{person: templates(match.Attrs{"first_name": "Pam"})},
	}, f.create(person, map[string]any{"first_name": "Pam", "last_name": "Greer"}))

	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, []State{StateInit, StateCountsChecked, StateAttributesChecked, StatePassed}, report.Path)
}

func TestEvaluate_AttributesFailWithMissingAndExtra(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts:     map[record.Type]int{person: 1},
		Attributes: map[record.Type][]match.Template{person: templates(match.Attrs{"first_name": "Sally"})},
	}, f.create(person, map[string]any{"first_name": "Pam", "last_name": "Greer"}))

	require.NoError(t, err)
	assert.Equal(t, StateFailedAttributes, report.State)
	result := report.Matches[person]
	assert.Len(t, result.Missing, 1)
	assert.Len(t, result.Extra, 1)

	want := "The block should have created:\n" +
		"    1 Person with these attributes:\n" +
		"        {first_name: \"Sally\"}\n" +
		"Diff:\n" +
		"    Missing 1 Person with these attributes:\n" +
		"        {first_name: \"Sally\"}\n" +
		"    Extra 1 Person with these attributes:\n" +
		"        {first_name: \"Pam\"}"
	assert.Equal(t, want, report.FailureMessage())
}

func TestEvaluate_GreedyOrderPasses(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 2},
		Attributes: map[record.Type][]match.Template{person: templates(
			match.Attrs{"a": 1},
			match.Attrs{"a": 1, "b": 2},
		)},
	}, func() error {
		f.src.Create(person, map[string]any{"a": 1, "b": 5})
		f.src.Create(person, map[string]any{"a": 1, "b": 2})
		return nil
	})

	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Empty(t, report.Matches[person].Extra)
}

func TestEvaluate_PredicatePasses(t *testing.T) {
	f := newFixture(t)
	var seen Created

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1},
		Which: func(created Created) error {
			seen = created
			return nil
		},
	}, f.create(person, nil))

	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Len(t, seen[person], 1)
	assert.Equal(t, []State{StateInit, StateCountsChecked, StatePredicateChecked, StatePassed}, report.Path)
}

func TestEvaluate_PredicateExpectationFailure(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1},
		Which: func(created Created) error {
			return Failf("expected %d people named Pam", 1)
		},
	}, f.create(person, map[string]any{"first_name": "Jim"}))

	require.NoError(t, err)
	assert.Equal(t, StateFailedPredicate, report.State)
	assert.Equal(t, "expected 1 people named Pam", report.FailureMessage())
}

func TestEvaluate_WrappedExpectationRecognized(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1},
		Which: func(Created) error {
			return errors.Join(Failf("no email"))
		},
	}, f.create(person, nil))

	require.NoError(t, err)
	assert.Equal(t, StateFailedPredicate, report.State)
	assert.Equal(t, "no email", report.FailureMessage())
}

func TestEvaluate_PredicateOtherErrorPropagates(t *testing.T) {
	f := newFixture(t)
	fatal := errors.New("database gone")

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1},
		Which:  func(Created) error { return fatal },
	}, f.create(person, nil))

	assert.Nil(t, report)
	assert.Same(t, fatal, err)
}

func TestEvaluate_BlockErrorPropagatesUnmodified(t *testing.T) {
	f := newFixture(t)
	blockErr := errors.New("insert failed")

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1},
	}, func() error { return blockErr })

	assert.Nil(t, report)
	assert.Same(t, blockErr, err)
}

func TestEvaluate_BlockPanicNotRecovered(t *testing.T) {
	f := newFixture(t)

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = f.engine.Evaluate(context.Background(), Request{
			Counts: map[record.Type]int{person: 1},
		}, func() error { panic("kaboom") })
	})
}

func TestEvaluate_TemplateCountMismatchBeforeBlock(t *testing.T) {
	f := newFixture(t)
	ran := false

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 3},
		Attributes: map[record.Type][]match.Template{person: templates(
			match.Attrs{"first_name": "Pam"},
			match.Attrs{"first_name": "Jim"},
		)},
	}, func() error {
		ran = true
		return nil
	})

	assert.Nil(t, report)
	require.True(t, IsConfigError(err))
	assert.False(t, ran, "block must not run")
	assert.Zero(t, f.src.Reads, "store must not be read")
	assert.Equal(t,
		"invalid assertion: specified the block should create 3 People, but provided 2 Person attribute templates",
		err.Error())
}

func TestEvaluate_AttributesForUndeclaredType(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Evaluate(context.Background(), Request{
		Counts:     map[record.Type]int{person: 1},
		Attributes: map[record.Type][]match.Template{pet: templates(match.Attrs{"name": "Rex"})},
	}, func() error { return nil })

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, pet, ce.Type)
}

func TestEvaluate_NegativeCount(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: -1},
	}, func() error { return nil })

	assert.True(t, IsConfigError(err))
}

func TestEvaluate_UnknownStrategy(t *testing.T) {
	f := newFixture(t)
	ran := false

	_, err := f.engine.Evaluate(context.Background(), Request{
		Counts:   map[record.Type]int{person: 1},
		Strategy: "optimistic",
	}, func() error {
		ran = true
		return nil
	})

	require.True(t, IsConfigError(err))
	var unknown *detect.UnknownStrategyError
	assert.ErrorAs(t, err, &unknown)
	assert.Contains(t, err.Error(), "snapshot, timestamp")
	assert.False(t, ran)
}

func TestEvaluate_SnapshotStrategy(t *testing.T) {
	f := newFixture(t)
	f.src.Create(person, nil)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts:   map[record.Type]int{person: 1},
		Strategy: detect.KeySnapshot,
	}, f.create(person, nil))

	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestEvaluate_NegatedMessage(t *testing.T) {
	f := newFixture(t)

	report, err := f.engine.Evaluate(context.Background(), Request{
		Counts: map[record.Type]int{person: 1},
	}, f.create(person, nil))

	require.NoError(t, err)
	require.True(t, report.Passed())
	assert.Equal(t, "The block should not have created 1 Person, but created 1.", report.NegatedFailureMessage())
}

func TestRequest_Description(t *testing.T) {
	req := Request{Counts: map[record.Type]int{pet: 2, person: 1}}
	assert.Equal(t, "create 1 Person, 2 Pets", req.Description())
}

func TestState_StringAndParse(t *testing.T) {
	for s := StateInit; s <= StateFailedPredicate; s++ {
		parsed, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseState("exploded")
	assert.Error(t, err)
	assert.Equal(t, "state(99)", State(99).String())
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StateInit.Terminal())
	assert.False(t, StateCountsChecked.Terminal())
	assert.True(t, StatePassed.Terminal())
	assert.True(t, StateFailedPredicate.Terminal())
}

func TestIsExpectationError(t *testing.T) {
	assert.True(t, IsExpectationError(Failf("x")))
	assert.False(t, IsExpectationError(errors.New("x")))
}
