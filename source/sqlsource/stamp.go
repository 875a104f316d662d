package sqlsource

import (
	"fmt"
	"time"

	"github.com/roach88/createcheck/record"
)

// precision is a comparison granularity both dialects render as fixed-width
// text, so comparing the text compares the instants.
type precision struct {
	unit   time.Duration
	layout string // Go layout of the rendered text
	sqlite string // strftime format rendering layout
	mysql  string // DATE_FORMAT format whose prefix renders layout
}

var precisions = []precision{
	{time.Millisecond, TimeLayout, "%Y-%m-%d %H:%M:%f", "%Y-%m-%d %H:%i:%s.%f"},
	{time.Second, "2006-01-02 15:04:05", "%Y-%m-%d %H:%M:%S", "%Y-%m-%d %H:%i:%s"},
	{time.Minute, "2006-01-02 15:04", "%Y-%m-%d %H:%M", "%Y-%m-%d %H:%i"},
	{time.Hour, "2006-01-02 15", "%Y-%m-%d %H", "%Y-%m-%d %H"},
	{24 * time.Hour, "2006-01-02", "%Y-%m-%d", "%Y-%m-%d"},
}

// precisionFor returns the finest precision at least as coarse as res.
// Resolutions finer than a millisecond compare at milliseconds, the finest
// SQLite date functions keep.
func precisionFor(res time.Duration) precision {
	for _, p := range precisions {
		if res <= p.unit {
			return p
		}
	}
	return precisions[len(precisions)-1]
}

// stampOperands returns the column expression and the bound value a
// timestamp query compares.
//
// By default both sides are rendered as UTC text at the query's resolution:
// the column through strftime or DATE_FORMAT, the instant in Go after
// truncation. A custom time encoder compares the raw column instead.
func (s *Source) stampOperands(column string, q record.StampQuery) (string, any) {
	at := record.Truncate(q.At, q.Resolution).UTC()
	if s.encodeTime != nil {
		return quote(column), s.encodeTime(at)
	}

	p := precisionFor(q.Resolution)
	if s.driver == DriverMySQL {
		// DATE_FORMAT always renders six fractional digits; LEFT cuts them
		// to the layout without rounding.
		return fmt.Sprintf("LEFT(DATE_FORMAT(%s, '%s'), %d)", quote(column), p.mysql, len(p.layout)), at.Format(p.layout)
	}
	return fmt.Sprintf("strftime('%s', %s)", p.sqlite, quote(column)), at.Format(p.layout)
}
