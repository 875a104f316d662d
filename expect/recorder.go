package expect

import (
	"fmt"
	"strings"

	"github.com/roach88/createcheck/reconcile"
)

// recorder collects testify assertion failures.
type recorder struct {
	messages []string
}

// Errorf implements assert.TestingT.
func (r *recorder) Errorf(format string, args ...any) {
	r.messages = append(r.messages, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (r *recorder) err() error {
	if len(r.messages) == 0 {
		return nil
	}
	return &reconcile.ExpectationError{Message: strings.Join(r.messages, "\n")}
}
