// Package sqlsource reads records from SQL tables.
//
// A record.Type maps to a table: Type.Table names it and Type.Key() names the
// primary key column. Each row becomes a Row whose attributes are the row's
// columns. SQLite (github.com/mattn/go-sqlite3) and MySQL
// (github.com/go-sql-driver/mysql) are supported.
//
// Timestamps are compared in SQL. For SQLite the start instant is encoded as
// fixed-width text in TimeLayout, which orders the same way as
// strftime('%Y-%m-%d %H:%M:%f', 'now') column defaults. Stores that stamp
// rows differently can supply WithTimeEncoder.
package sqlsource
