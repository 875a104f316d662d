package scenario

import (
	"fmt"
	"regexp"

	"github.com/roach88/createcheck/match"
)

// template converts a YAML attribute map into a match.Template.
func template(attrs map[string]any) (match.Template, error) {
	t := make(match.Template, len(attrs))
	for _, name := range sortedKeys(attrs) {
		v, err := value(attrs[name])
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		t[name] = v
	}
	return t, nil
}

// value resolves a YAML value. One-key maps naming a predicate become that
// predicate; everything else is a literal.
func value(raw any) (match.Value, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return match.Eq(raw), nil
	}

	for kind, arg := range m {
		switch kind {
		case "cue":
			expr, ok := arg.(string)
			if !ok {
				return nil, fmt.Errorf("cue constraint must be a string, got %T", arg)
			}
			return match.CUE(expr)
		case "regexp":
			pattern, ok := arg.(string)
			if !ok {
				return nil, fmt.Errorf("regexp must be a string, got %T", arg)
			}
			if _, err := regexp.Compile(pattern); err != nil {
				return nil, fmt.Errorf("invalid regexp %q: %w", pattern, err)
			}
			return match.Regexp(pattern), nil
		case "text":
			text, ok := arg.(string)
			if !ok {
				return nil, fmt.Errorf("text must be a string, got %T", arg)
			}
			return match.Text(text), nil
		case "present":
			if want, ok := arg.(bool); !ok || !want {
				return nil, fmt.Errorf("present only accepts true")
			}
			return match.Present(), nil
		}
	}
	return match.Eq(raw), nil
}
