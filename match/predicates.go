package match

import (
	"fmt"
	"regexp"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
)

// Func returns a Predicate backed by fn.
func Func(description string, fn func(actual any) bool) Predicate {
	return Predicate{Description: description, Test: fn}
}

// Present matches any non-nil value.
func Present() Predicate {
	return Func("present", func(actual any) bool {
		return actual != nil
	})
}

// Regexp matches string and []byte values against pattern.
// Panics if pattern does not compile, like regexp.MustCompile.
func Regexp(pattern string) Predicate {
	re := regexp.MustCompile(pattern)
	return Func("matches /"+pattern+"/", func(actual any) bool {
		s, ok := textOf(actual)
		return ok && re.MatchString(s)
	})
}

// Text matches string values equal to want after Unicode NFC normalization,
// so a decomposed "é" stored by one client equals a composed one in a test.
func Text(want string) Predicate {
	normalized := norm.NFC.String(want)
	return Func(fmt.Sprintf("text %q", want), func(actual any) bool {
		s, ok := textOf(actual)
		return ok && norm.NFC.String(s) == normalized
	})
}

// CUE matches values that unify with a CUE constraint expression,
// e.g. `>=18 & <65` or `=~"^P"`.
//
// Values that do not encode to CUE never match.
func CUE(expr string) (Predicate, error) {
	ctx := cuecontext.New()
	constraint := ctx.CompileString(expr)
	if err := constraint.Err(); err != nil {
		return Predicate{}, fmt.Errorf("compile cue constraint %q: %w", expr, err)
	}

	return Func("cue "+expr, func(actual any) bool {
		v := ctx.Encode(cueInput(actual))
		if v.Err() != nil {
			return false
		}
		return constraint.Unify(v).Validate(cue.Concrete(true)) == nil
	}), nil
}

// MustCUE is like CUE but panics if expr does not compile.
func MustCUE(expr string) Predicate {
	p, err := CUE(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// cueInput converts driver values to forms CUE constraints are written
// against.
func cueInput(actual any) any {
	switch v := actual.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return actual
	}
}

func textOf(actual any) (string, bool) {
	switch v := actual.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
