// Package export writes a chart to disk as SVG, PNG, interactive HTML,
// a JSON scene dump or a Markdown summary.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/debug"
	"github.com/vanderheijden86/lifespan/pkg/metrics"
)

// Output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatHTML     = "html"
	FormatJSON     = "json"
	FormatMarkdown = "md"
)

// DefaultTitle is used when ChartOptions.Title is empty.
const DefaultTitle = "Healthy Life Expectancy, Life Expectancy and Retirement Age"

// MaxParallelExports bounds SaveAll's concurrency.
const MaxParallelExports = 4

// ChartOptions controls a single export.
type ChartOptions struct {
	Path   string       // Output path; format inferred from extension when Format empty
	Format string       // svg, png, html, json or md (case-insensitive)
	Title  string       // Document title for SVG/HTML/Markdown
	Chart  *chart.Chart // Chart to render; read only
}

// FormatFor resolves the output format from an explicit format or the
// path's extension.
func FormatFor(path, format string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	switch format {
	case FormatSVG, FormatPNG, FormatJSON, FormatMarkdown:
		return format, nil
	case FormatHTML, "htm":
		return FormatHTML, nil
	case "markdown":
		return FormatMarkdown, nil
	case "":
		return "", fmt.Errorf("cannot infer format of %q (want .svg, .png, .html, .json or .md)", path)
	default:
		return "", fmt.Errorf("unsupported format %q (want svg, png, html, json or md)", format)
	}
}

// SaveChart renders the chart in one format. The parent directory is
// created when missing.
func SaveChart(opts ChartOptions) error {
	if opts.Chart == nil {
		return fmt.Errorf("no chart to export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	format, err := FormatFor(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	start := time.Now()
	defer func() { debug.LogTiming("export "+opts.Path, time.Since(start)) }()

	if format == FormatPNG {
		return SavePNG(opts.Path, opts.Chart)
	}

	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := write(file, format, opts); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", opts.Path, err)
	}
	return file.Close()
}

func write(w io.Writer, format string, opts ChartOptions) error {
	switch format {
	case FormatSVG:
		return WriteSVG(w, opts.Chart, opts.Title)
	case FormatHTML:
		return WriteHTML(w, opts.Chart, opts.Title)
	case FormatJSON:
		return WriteSceneJSON(w, opts.Chart)
	case FormatMarkdown:
		return WriteMarkdown(w, opts.Chart.Dataset(), opts.Title)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// SaveAll writes every path concurrently. All formats are checked before
// anything is written; the first failure cancels the outputs not yet
// started. The chart must not be mutated while SaveAll runs.
func SaveAll(ctx context.Context, c *chart.Chart, title string, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no outputs given")
	}
	for _, p := range paths {
		if _, err := FormatFor(p, ""); err != nil {
			return err
		}
	}

	defer metrics.Timer(metrics.Export)()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxParallelExports)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return SaveChart(ChartOptions{Path: p, Title: title, Chart: c})
		})
	}
	return g.Wait()
}
