package boltsource

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/createcheck/detect"
	"github.com/roach88/createcheck/expect"
	"github.com/roach88/createcheck/internal/testutil"
	"github.com/roach88/createcheck/match"
	"github.com/roach88/createcheck/record"
)

var (
	person = record.Type{Name: "Person", Plural: "People", Table: "people"}
	pet    = record.Type{Name: "Pet", Table: "pets"}
)

func newStore(t *testing.T, clock detect.Clock) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "docs.db"), WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustInsert(t *testing.T, s *Store, typ record.Type, doc map[string]any) *Doc {
	t.Helper()
	d, err := s.Insert(typ, doc)
	require.NoError(t, err)
	return d
}

func firstNames(t *testing.T, records []record.Record) []string {
	t.Helper()
	out := make([]string, len(records))
	for i, r := range records {
		v, ok := r.Get("first_name")
		require.True(t, ok)
		out[i] = v.(string)
	}
	return out
}

func TestInsert_AssignsIdentityAndStamp(t *testing.T) {
	clock := testutil.NewTickClock(time.Second)
	s := newStore(t, clock)

	d := mustInsert(t, s, person, map[string]any{"first_name": "Pam"})

	id, ok := d.Get("id")
	require.True(t, ok)
	assert.Equal(t, string(d.Key()), id)

	at, ok := d.Time("created_at")
	require.True(t, ok)
	assert.True(t, at.Equal(testutil.Epoch))
}

func TestInsert_ExplicitFieldsWin(t *testing.T) {
	clock := testutil.NewTickClock(time.Second)
	s := newStore(t, clock)

	d := mustInsert(t, s, person, map[string]any{"id": "pam", "created_at": "2020-05-01T00:00:00Z"})

	assert.Equal(t, record.Key("pam"), d.Key())
	at, ok := d.Time("created_at")
	require.True(t, ok)
	assert.Equal(t, 2020, at.Year())

	_, err := s.Insert(person, map[string]any{"id": "pam"})
	assert.ErrorContains(t, err, "already exists")

	_, err = s.Insert(person, map[string]any{"id": 7})
	assert.ErrorContains(t, err, "non-empty string")
}

func TestDoc_GetNestedPath(t *testing.T) {
	s := newStore(t, testutil.NewTickClock(time.Second))

	d := mustInsert(t, s, pet, map[string]any{
		"name":  "Rex",
		"owner": map[string]any{"name": "Pam", "age": 31},
	})

	name, ok := d.Get("owner.name")
	require.True(t, ok)
	assert.Equal(t, "Pam", name)

	age, ok := d.Get("owner.age")
	require.True(t, ok)
	assert.Equal(t, float64(31), age)

	_, ok = d.Get("owner.email")
	assert.False(t, ok)
}

func TestAll_InsertionOrder(t *testing.T) {
	clock := testutil.NewTickClock(time.Second)
	s := newStore(t, clock)

	mustInsert(t, s, person, map[string]any{"first_name": "Pam"})
	mustInsert(t, s, person, map[string]any{"first_name": "Jim"})
	mustInsert(t, s, person, map[string]any{"first_name": "Dwight"})

	all, err := s.All(context.Background(), person)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pam", "Jim", "Dwight"}, firstNames(t, all))
}

func TestAll_MissingBucketIsEmpty(t *testing.T) {
	s := newStore(t, testutil.NewTickClock(time.Second))

	all, err := s.All(context.Background(), pet)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestStamped_EqualAndAfter(t *testing.T) {
	clock := testutil.NewTickClock(time.Second)
	s := newStore(t, clock)

	mustInsert(t, s, person, map[string]any{"first_name": "Before"})
	t0 := clock.Next()
	mustInsert(t, s, person, map[string]any{"first_name": "Tie"})
	clock.Next()
	mustInsert(t, s, person, map[string]any{"first_name": "Later"})

	ctx := context.Background()
	ties, err := s.Stamped(ctx, person, record.StampQuery{Column: "created_at", Op: record.OpEqual, At: t0})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tie"}, firstNames(t, ties))

	later, err := s.Stamped(ctx, person, record.StampQuery{Column: "created_at", Op: record.OpAfter, At: t0})
	require.NoError(t, err)
	assert.Equal(t, []string{"Later"}, firstNames(t, later))
}

func TestStamped_ComparesAtResolution(t *testing.T) {
	base := testutil.Epoch.Add(5 * time.Second)
	s := newStore(t, testutil.FixedClock(base.Add(100*time.Microsecond)))
	mustInsert(t, s, person, map[string]any{"first_name": "Fine"})
	mustInsert(t, s, person, map[string]any{"first_name": "Coarse", "created_at": base.Format(time.RFC3339)})

	ctx := context.Background()
	start := base.Add(300 * time.Millisecond)

	ties, err := s.Stamped(ctx, person, record.StampQuery{Column: "created_at", Op: record.OpEqual, At: start, Resolution: time.Second})
	require.NoError(t, err)
	assert.Equal(t, []string{"Coarse", "Fine"}, firstNames(t, ties))

	later, err := s.Stamped(ctx, person, record.StampQuery{Column: "created_at", Op: record.OpAfter, At: start, Resolution: time.Second})
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestStamped_UnsupportedOp(t *testing.T) {
	s := newStore(t, testutil.NewTickClock(time.Second))

	_, err := s.Stamped(context.Background(), person, record.StampQuery{Column: "created_at", Op: record.Op(7)})
	assert.ErrorContains(t, err, "unsupported timestamp comparison")
}

func TestStamped_MissingColumn(t *testing.T) {
	s := newStore(t, testutil.NewTickClock(time.Second))
	mustInsert(t, s, person, nil)

	_, err := s.Stamped(context.Background(), person, record.StampQuery{Column: "inserted_at", Op: record.OpAfter, At: testutil.Epoch})
	assert.ErrorIs(t, err, record.ErrNoTimestamps)
}

func TestWithColumn(t *testing.T) {
	clock := testutil.NewTickClock(time.Second)
	s, err := Open(filepath.Join(t.TempDir(), "docs.db"), WithClock(clock), WithColumn("create_timestamp"))
	require.NoError(t, err)
	defer s.Close()

	d := mustInsert(t, s, person, nil)
	_, ok := d.Time("create_timestamp")
	assert.True(t, ok)
	_, ok = d.Get("created_at")
	assert.False(t, ok)
}

func TestExpect_TimestampTieInSameTick(t *testing.T) {
	clock := testutil.NewTickClock(time.Second)
	s := newStore(t, clock)
	mustInsert(t, s, person, map[string]any{"first_name": "Existing"})

	c := expect.New(s).WithClock(clock)

	c.CreatesA(person).
		With(match.Attrs{"first_name": "Pam", "address.city": "Scranton"}).
		Assert(t, func() error {
			_, err := s.Insert(person, map[string]any{
				"first_name": "Pam",
				"address":    map[string]any{"city": "Scranton"},
			})
			return err
		})
}

func TestExpect_SnapshotStrategy(t *testing.T) {
	clock := testutil.NewTickClock(time.Second)
	s := newStore(t, clock)
	mustInsert(t, s, pet, map[string]any{"name": "Old"})

	c := expect.New(s).WithStrategy(detect.KeySnapshot)

	c.Creates(expect.Counts{pet: 2}).
		WithAttributes(expect.Attributes{pet: {
			match.Attrs{"name": "Rex", "legs": 4}.Template(),
			match.Attrs{"name": match.Regexp("^Fi")}.Template(),
		}}).
		Assert(t, func() error {
			if _, err := s.Insert(pet, map[string]any{"name": "Fido", "legs": 4}); err != nil {
				return err
			}
			_, err := s.Insert(pet, map[string]any{"name": "Rex", "legs": 4})
			return err
		})
}
