// Package loader reads life expectancy records from CSV files, http(s)
// URLs, standard input or SQLite tables.
//
// Columns are located by header name, so their order does not matter and
// extra columns are ignored. A record with a missing or non-numeric field,
// a blank location, or a location already seen is skipped and reported as
// a *model.RecordError; the rest of the input still loads. Failing to
// read the input at all is a *model.LoadError.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/lifespan/internal/datasource"
	"github.com/vanderheijden86/lifespan/pkg/debug"
	"github.com/vanderheijden86/lifespan/pkg/metrics"
	"github.com/vanderheijden86/lifespan/pkg/model"
)

// DefaultTimeout bounds an HTTP fetch when no client is supplied.
const DefaultTimeout = 30 * time.Second

// MaxBodySize caps how much of an HTTP response is read (64MB).
const MaxBodySize = 64 << 20

// ParseOptions configures parsing.
type ParseOptions struct {
	// WarningHandler is called with warning messages (skipped records,
	// inverted ranges). If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)
}

// Options configures Load.
type Options struct {
	ParseOptions

	// Table is the SQLite table to read. Defaults to "records".
	Table string
	// Client fetches URL inputs. Defaults to a client with DefaultTimeout.
	Client *http.Client
	// Stdin is read for the "-" input. Defaults to os.Stdin.
	Stdin io.Reader
	// MaxBodySize caps a URL response. Defaults to MaxBodySize; a larger
	// response fails the load instead of being cut short.
	MaxBodySize int64
}

// Result is a loaded dataset plus what was dropped or flagged on the way.
type Result struct {
	Dataset model.Dataset
	Source  datasource.DataSource
	// Skipped lists rejected records in input order.
	Skipped []*model.RecordError
	// Inverted lists locations whose healthy value exceeds the total.
	Inverted []string
}

// Load resolves input to a data source and reads it. Any failure that
// prevents rendering is returned as a *model.LoadError.
func Load(ctx context.Context, input string, opts Options) (Result, error) {
	start := time.Now()
	defer func() { debug.LogTiming("loader.Load "+input, time.Since(start)) }()
	defer metrics.Timer(metrics.Load)()

	table := opts.Table
	if table == "" {
		table = "records"
	}
	src, err := datasource.Detect(input, table)
	if err != nil {
		return Result{}, &model.LoadError{Source: input, Err: err}
	}
	debug.Log("loader: source %s", src)

	var res Result
	switch src.Type {
	case datasource.SourceTypeStdin:
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		res, err = ParseCSV(in, opts.ParseOptions)
	case datasource.SourceTypeURL:
		res, err = fetchURL(ctx, src.Path, opts.Client, opts.MaxBodySize, opts.ParseOptions)
	case datasource.SourceTypeSQLite:
		res, err = readSQLite(ctx, src, opts.ParseOptions)
	default:
		res, err = readFile(src.Path, opts.ParseOptions)
	}
	if err != nil {
		return Result{}, &model.LoadError{Source: input, Err: err}
	}
	res.Source = src
	return res, nil
}

// LoadFile reads a local CSV file.
func LoadFile(path string, opts ParseOptions) (Result, error) {
	res, err := readFile(path, opts)
	if err != nil {
		return Result{}, &model.LoadError{Source: path, Err: err}
	}
	res.Source = datasource.DataSource{Type: datasource.SourceTypeCSV, Path: path}
	return res, nil
}

func readFile(path string, opts ParseOptions) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open records file: %w", err)
	}
	defer file.Close()
	return ParseCSV(file, opts)
}

func fetchURL(ctx context.Context, url string, client *http.Client, limit int64, opts ParseOptions) (Result, error) {
	if limit <= 0 {
		limit = MaxBodySize
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("fetch failed: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Result{}, fmt.Errorf("fetch failed: %w", err)
	}
	if int64(len(body)) > limit {
		return Result{}, fmt.Errorf("response exceeds %d bytes", limit)
	}
	return ParseCSV(bytes.NewReader(body), opts)
}

func readSQLite(ctx context.Context, src datasource.DataSource, opts ParseOptions) (Result, error) {
	r, err := datasource.NewSQLiteReader(src)
	if err != nil {
		return Result{}, err
	}
	defer r.Close()

	tbl, err := r.ReadTable(ctx, src.Table)
	if err != nil {
		return Result{}, err
	}
	b, err := newBuilder(tbl.Header, opts)
	if err != nil {
		return Result{}, err
	}
	for i, row := range tbl.Rows {
		b.add(i+1, row)
	}
	return b.finish()
}

// ParseCSV parses CSV content from a reader. Handles UTF-8 BOM stripping,
// ragged rows and malformed quoting (the offending row is skipped).
func ParseCSV(r io.Reader, opts ParseOptions) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, fmt.Errorf("no header row: %w", model.ErrEmptyDataset)
	}
	if err != nil {
		return Result{}, fmt.Errorf("error reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = string(stripBOM([]byte(header[0])))
	}

	b, err := newBuilder(header, opts)
	if err != nil {
		return Result{}, err
	}

	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				b.skip(&model.RecordError{Line: pe.StartLine, Err: pe.Err})
				continue
			}
			return Result{}, fmt.Errorf("error reading records stream: %w", err)
		}
		line, _ := cr.FieldPos(0)
		b.add(line, fields)
	}
	return b.finish()
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

var requiredColumns = []string{
	model.FieldLocation,
	model.FieldHealthyLifeExpectancy,
	model.FieldLifeExpectancy,
	model.FieldRetirementAge,
}

// builder turns header-indexed rows into records.
type builder struct {
	cols    map[string]int
	warn    func(string)
	seen    map[string]bool
	records []model.Record
	res     Result
}

func newBuilder(header []string, opts ParseOptions) (*builder, error) {
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}

	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeColumn(h)
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}
	cols := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, name := range requiredColumns {
		i, ok := byName[normalizeColumn(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing column(s) %s", strings.Join(missing, ", "))
	}
	return &builder{cols: cols, warn: warn, seen: map[string]bool{}}, nil
}

// normalizeColumn makes "Retirement Age", "retirement_age" and
// "RetirementAge" the same column.
func normalizeColumn(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (b *builder) field(fields []string, name string) string {
	i := b.cols[name]
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func (b *builder) number(line int, loc string, fields []string, name string) (float64, error) {
	raw := b.field(fields, name)
	if raw == "" {
		return 0, &model.RecordError{Line: line, Location: loc, Field: name, Err: model.ErrMissingField}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &model.RecordError{Line: line, Location: loc, Field: name, Err: fmt.Errorf("%w: %q", model.ErrNotNumeric, raw)}
	}
	return v, nil
}

func (b *builder) add(line int, fields []string) {
	if isBlank(fields) {
		return
	}
	rec := model.Record{Location: b.field(fields, model.FieldLocation)}
	if err := rec.Validate(); err != nil {
		var re *model.RecordError
		if errors.As(err, &re) {
			re.Line = line
		}
		b.skip(err)
		return
	}

	var err error
	if rec.HealthyLifeExpectancy, err = b.number(line, rec.Location, fields, model.FieldHealthyLifeExpectancy); err != nil {
		b.skip(err)
		return
	}
	if rec.LifeExpectancy, err = b.number(line, rec.Location, fields, model.FieldLifeExpectancy); err != nil {
		b.skip(err)
		return
	}
	if rec.RetirementAge, err = b.number(line, rec.Location, fields, model.FieldRetirementAge); err != nil {
		b.skip(err)
		return
	}

	if b.seen[rec.Location] {
		b.skip(&model.RecordError{Line: line, Location: rec.Location, Field: model.FieldLocation, Err: model.ErrDuplicateLocation})
		return
	}
	b.seen[rec.Location] = true

	if rec.Inverted() {
		b.res.Inverted = append(b.res.Inverted, rec.Location)
		b.warn(fmt.Sprintf("line %d (%s): healthy life expectancy %s exceeds life expectancy %s",
			line, rec.Location, model.FormatAge(rec.HealthyLifeExpectancy), model.FormatAge(rec.LifeExpectancy)))
	}
	b.records = append(b.records, rec)
}

func (b *builder) skip(err error) {
	var re *model.RecordError
	if !errors.As(err, &re) {
		re = &model.RecordError{Err: err}
	}
	b.res.Skipped = append(b.res.Skipped, re)
	b.warn("skipping " + re.Error())
}

func (b *builder) finish() (Result, error) {
	if len(b.records) == 0 {
		return Result{}, model.ErrEmptyDataset
	}
	ds, err := model.NewDataset(b.records)
	if err != nil {
		return Result{}, err
	}
	b.res.Dataset = ds
	debug.Log("loader: %d records, %d skipped, %d inverted", ds.Len(), len(b.res.Skipped), len(b.res.Inverted))
	debug.LogIf(len(b.res.Skipped) > ds.Len(), "loader: more records skipped than kept; check the column headers")
	return b.res, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
