package match

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Value is an expected attribute value.
// Only Literal and Predicate implement it.
type Value interface {
	// SatisfiedBy reports whether an actual attribute value meets the
	// expectation.
	SatisfiedBy(actual any) bool

	// String renders the expectation for failure messages.
	String() string

	value() // sealed
}

// Literal expects an attribute to equal Want.
type Literal struct {
	Want any
}

func (Literal) value() {}

// Eq returns a Literal expecting want.
func Eq(want any) Literal {
	return Literal{Want: want}
}

// SatisfiedBy implements Value.
func (l Literal) SatisfiedBy(actual any) bool {
	return valuesEqual(l.Want, actual)
}

// String implements Value.
func (l Literal) String() string {
	return FormatValue(l.Want)
}

// Predicate expects an attribute to pass Test.
type Predicate struct {
	// Description is shown in failure messages in place of a literal.
	Description string

	// Test decides whether an actual value is acceptable.
	Test func(actual any) bool
}

func (Predicate) value() {}

// SatisfiedBy implements Value. A Predicate without a Test never matches.
func (p Predicate) SatisfiedBy(actual any) bool {
	if p.Test == nil {
		return false
	}
	return p.Test(actual)
}

// String implements Value.
func (p Predicate) String() string {
	if p.Description == "" {
		return "<predicate>"
	}
	return "<" + p.Description + ">"
}

// FormatValue renders an attribute value the way failure messages show it:
// strings quoted, []byte as text, times in RFC 3339, nil as "nil".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(val)
	case []byte:
		return strconv.Quote(string(val))
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// valuesEqual compares expected and actual attribute values.
// Handles type coercion for database values which may be returned as
// different types than the ones a test author writes.
func valuesEqual(expected, actual any) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	// Drivers return TEXT columns as []byte
	if b, ok := actual.([]byte); ok {
		if _, wantBytes := expected.([]byte); !wantBytes {
			actual = string(b)
		}
	}

	switch exp := expected.(type) {
	case string:
		actualStr, ok := actual.(string)
		return ok && exp == actualStr
	case bool:
		if actualBool, ok := actual.(bool); ok {
			return exp == actualBool
		}
		// SQLite stores booleans as integers
		if actualInt, ok := toInt64(actual); ok {
			return exp == (actualInt != 0)
		}
		return false
	case time.Time:
		actualTime, ok := actual.(time.Time)
		return ok && exp.Equal(actualTime)
	}

	if expInt, ok := toInt64(expected); ok {
		if actualInt, ok := toInt64(actual); ok {
			return expInt == actualInt
		}
		if actualFloat, ok := toFloat64(actual); ok {
			return float64(expInt) == actualFloat
		}
		return false
	}
	if expFloat, ok := toFloat64(expected); ok {
		actualFloat, ok := toFloat64(actual)
		return ok && expFloat == actualFloat
	}

	// Fallback to DeepEqual for complex types
	return reflect.DeepEqual(expected, actual)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uintptr:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
