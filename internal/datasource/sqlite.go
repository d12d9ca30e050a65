package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table is a SQLite table read as text, in the shape the CSV parser
// consumes: a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// SQLiteReader provides read access to a records database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadTable reads every row of a table or view. Values are converted to
// text and NULLs become empty strings, so the caller applies the same
// field coercion as for CSV input.
func (r *SQLiteReader) ReadTable(ctx context.Context, table string) (Table, error) {
	if !identRe.MatchString(table) {
		return Table{}, fmt.Errorf("invalid table name %q", table)
	}

	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return Table{}, fmt.Errorf("table %q not found in %s", table, r.path)
	}
	if err != nil {
		return Table{}, fmt.Errorf("cannot read schema of %s: %w", r.path, err)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, table))
	if err != nil {
		return Table{}, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Table{}, err
	}
	out := Table{Header: cols}

	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return Table{}, fmt.Errorf("scan %s row %d: %w", table, len(out.Rows)+1, err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Table{}, fmt.Errorf("read %s: %w", table, err)
	}
	return out, nil
}
