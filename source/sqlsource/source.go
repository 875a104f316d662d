package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/createcheck/record"
)

// TimeLayout is the SQLite text encoding of instants. It is fixed width so
// text comparison orders instants correctly.
const TimeLayout = "2006-01-02 15:04:05.000"

// mysqlUnknownColumn is ER_BAD_FIELD_ERROR.
const mysqlUnknownColumn = 1054

// validIdentifier matches table and column names that may be interpolated
// into queries.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FormatTime encodes ts as UTC text in TimeLayout.
func FormatTime(ts time.Time) string {
	return ts.UTC().Format(TimeLayout)
}

// Source reads records from a SQL database.
type Source struct {
	db         *sql.DB
	driver     string
	encodeTime func(time.Time) any // nil compares normalized text
	owned      bool
}

var _ record.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithTimeEncoder sets how the start instant is bound in timestamp queries.
// The column is then compared as stored, so fn must return the column's own
// representation, e.g. Unix seconds for an INTEGER column. fn receives the
// instant already truncated to the query's resolution.
func WithTimeEncoder(fn func(time.Time) any) Option {
	return func(s *Source) {
		s.encodeTime = fn
	}
}

// New wraps an open database. driver is DriverSQLite or DriverMySQL and
// selects the SQL dialect of timestamp queries. The caller keeps ownership
// of db.
func New(db *sql.DB, driver string, opts ...Option) *Source {
	s := &Source{
		db:     db,
		driver: driver,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the database named by connStr (see
// ParseConnectionString). Close releases the connection.
func Open(ctx context.Context, connStr string, opts ...Option) (*Source, error) {
	driver, dsn, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := New(db, driver, opts...)
	s.owned = true
	return s, nil
}

// DB returns the underlying database.
func (s *Source) DB() *sql.DB {
	return s.db
}

// Driver returns the driver name.
func (s *Source) Driver() string {
	return s.driver
}

// Close closes the database if Open created it.
func (s *Source) Close() error {
	if !s.owned || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// All implements record.Snapshotter. Rows are ordered by primary key.
func (s *Source) All(ctx context.Context, t record.Type) ([]record.Record, error) {
	table, pk, err := identifiers(t)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", quote(table), quote(pk))
	return s.query(ctx, t, query)
}

// Stamped implements record.StampReader. Rows are ordered by timestamp, then
// primary key.
func (s *Source) Stamped(ctx context.Context, t record.Type, q record.StampQuery) ([]record.Record, error) {
	table, pk, err := identifiers(t)
	if err != nil {
		return nil, err
	}
	if !validIdentifier.MatchString(q.Column) {
		return nil, fmt.Errorf("invalid column name %q: must match pattern %s", q.Column, validIdentifier.String())
	}

	var cmp string
	switch q.Op {
	case record.OpEqual:
		cmp = "="
	case record.OpAfter:
		cmp = ">"
	default:
		return nil, fmt.Errorf("unsupported timestamp comparison %v", q.Op)
	}

	stamp, at := s.stampOperands(q.Column, q)
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s %s ? ORDER BY %s, %s",
		quote(table), stamp, cmp, quote(q.Column), quote(pk))

	records, err := s.query(ctx, t, query, at)
	if err != nil && isUnknownColumn(err) {
		return nil, fmt.Errorf("%s.%s: %w", table, q.Column, record.ErrNoTimestamps)
	}
	return records, err
}

func (s *Source) query(ctx context.Context, t record.Type, query string, args ...any) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.Table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	pk := t.Key()
	out := make([]record.Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.Table, err)
		}

		row := &Row{values: make(map[string]any, len(columns))}
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row.values[col] = val
		}
		pkValue, ok := row.values[pk]
		if !ok {
			return nil, fmt.Errorf("table %s has no primary key column %q", t.Table, pk)
		}
		row.key = keyOf(pkValue)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func identifiers(t record.Type) (table, pk string, err error) {
	if !validIdentifier.MatchString(t.Table) {
		return "", "", fmt.Errorf("invalid table name %q for %s: must match pattern %s", t.Table, t.Name, validIdentifier.String())
	}
	pk = t.Key()
	if !validIdentifier.MatchString(pk) {
		return "", "", fmt.Errorf("invalid primary key %q for %s: must match pattern %s", pk, t.Name, validIdentifier.String())
	}
	return t.Table, pk, nil
}

// quote wraps an identifier in backticks, which SQLite and MySQL both
// accept.
func quote(ident string) string {
	return "`" + ident + "`"
}

func isUnknownColumn(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlUnknownColumn
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such column")
}
