// Package datasource decides where lifespan records come from. An input
// string names a local CSV file, an http(s) URL, standard input ("-"), or
// a SQLite database ("sqlite:path" or a .db/.sqlite/.sqlite3 file).
package datasource

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeCSV is a local CSV file
	SourceTypeCSV SourceType = "csv"
	// SourceTypeURL is a CSV document fetched over HTTP(S)
	SourceTypeURL SourceType = "url"
	// SourceTypeSQLite is a table in a SQLite database
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeStdin is CSV read from standard input
	SourceTypeStdin SourceType = "stdin"
)

// SQLitePrefix forces an input to be read as a SQLite database.
const SQLitePrefix = "sqlite:"

// ErrNoInput is returned for a blank input string.
var ErrNoInput = errors.New("no input given")

var sqliteExts = map[string]bool{".db": true, ".sqlite": true, ".sqlite3": true}

// DataSource describes one resolved input.
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the file path, or the URL for SourceTypeURL
	Path string `json:"path"`
	// Table is the SQLite table to read (SQLite only)
	Table string `json:"table,omitempty"`
	// ModTime is the last modification time, for local files after Stat
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes, for local files after Stat
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	if s.Type == SourceTypeSQLite {
		return fmt.Sprintf("%s (%s, table=%s)", s.Path, s.Type, s.Table)
	}
	return fmt.Sprintf("%s (%s)", s.Path, s.Type)
}

// IsLocal reports whether the source is a file on disk.
func (s DataSource) IsLocal() bool {
	return s.Type == SourceTypeCSV || s.Type == SourceTypeSQLite
}

// Detect resolves an input string to a data source. table is only used
// for SQLite sources.
func Detect(input, table string) (DataSource, error) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return DataSource{}, ErrNoInput
	case input == "-":
		return DataSource{Type: SourceTypeStdin, Path: "-"}, nil
	case strings.HasPrefix(input, SQLitePrefix):
		path := strings.TrimPrefix(input, SQLitePrefix)
		if path == "" {
			return DataSource{}, fmt.Errorf("sqlite source %q has no path", input)
		}
		return DataSource{Type: SourceTypeSQLite, Path: path, Table: table}, nil
	}

	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if u.Host == "" {
			return DataSource{}, fmt.Errorf("url %q has no host", input)
		}
		return DataSource{Type: SourceTypeURL, Path: input}, nil
	}

	if sqliteExts[strings.ToLower(filepath.Ext(input))] {
		return DataSource{Type: SourceTypeSQLite, Path: input, Table: table}, nil
	}
	return DataSource{Type: SourceTypeCSV, Path: input}, nil
}

// Stat fills ModTime and Size for local sources. It fails if the file is
// missing or is a directory.
func (s DataSource) Stat() (DataSource, error) {
	if !s.IsLocal() {
		return s, nil
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return s, err
	}
	if info.IsDir() {
		return s, fmt.Errorf("%s is a directory", s.Path)
	}
	s.ModTime = info.ModTime()
	s.Size = info.Size()
	return s, nil
}
