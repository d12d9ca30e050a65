package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/lifespan/pkg/model"
)

// FieldStats summarizes one numeric column.
type FieldStats struct {
	Name   string
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary describes a dataset in aggregate.
type Summary struct {
	Count  int
	Fields []FieldStats
	// WidestGap is the location with the most years lived in poor health.
	WidestGap model.Record
	// RetireAfterHealthy counts locations whose retirement age exceeds
	// healthy life expectancy.
	RetireAfterHealthy int
	Inverted           int
}

// Summarize computes per-field statistics. An empty dataset yields a
// zero Summary.
func Summarize(ds model.Dataset) Summary {
	records := ds.Records()
	s := Summary{Count: len(records)}
	if len(records) == 0 {
		return s
	}

	columns := []struct {
		name string
		get  func(model.Record) float64
	}{
		{"Healthy Life Expectancy", func(r model.Record) float64 { return r.HealthyLifeExpectancy }},
		{"Life Expectancy", func(r model.Record) float64 { return r.LifeExpectancy }},
		{"Retirement Age", func(r model.Record) float64 { return r.RetirementAge }},
	}
	for _, col := range columns {
		xs := make([]float64, len(records))
		for i, r := range records {
			xs[i] = col.get(r)
		}
		fs := FieldStats{
			Name: col.name,
			Mean: stat.Mean(xs, nil),
			Min:  floats.Min(xs),
			Max:  floats.Max(xs),
		}
		if len(xs) > 1 {
			fs.StdDev = stat.StdDev(xs, nil)
		}
		sort.Float64s(xs)
		fs.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
		s.Fields = append(s.Fields, fs)
	}

	s.WidestGap = records[0]
	for _, r := range records {
		if r.Span() > s.WidestGap.Span() {
			s.WidestGap = r
		}
		if r.RetirementAge > r.HealthyLifeExpectancy {
			s.RetireAfterHealthy++
		}
		if r.Inverted() {
			s.Inverted++
		}
	}
	return s
}

// GenerateMarkdown creates a markdown report of the dataset: aggregate
// statistics followed by one table row per record in dataset order.
func GenerateMarkdown(ds model.Dataset, title string) string {
	var sb strings.Builder
	s := Summarize(ds)

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("**Locations:** %d\n\n", s.Count))
	if s.Count == 0 {
		return sb.String()
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Measure | Mean | Median | Std Dev | Min | Max |\n")
	sb.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, f := range s.Fields {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			f.Name, model.FormatAge(f.Mean), model.FormatAge(f.Median), model.FormatAge(f.StdDev),
			model.FormatAge(f.Min), model.FormatAge(f.Max)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("- Widest gap between healthy and total life expectancy: **%s** (%s years)\n",
		escapeCell(s.WidestGap.Location), model.FormatAge(s.WidestGap.Span())))
	sb.WriteString(fmt.Sprintf("- Retirement age above healthy life expectancy: %d of %d\n", s.RetireAfterHealthy, s.Count))
	if s.Inverted > 0 {
		sb.WriteString(fmt.Sprintf("- Records with healthy above total life expectancy: %d\n", s.Inverted))
	}

	sb.WriteString("\n## Records\n\n")
	sb.WriteString("| Location | Healthy | Life | Retirement | Gap |\n")
	sb.WriteString("|---|---:|---:|---:|---:|\n")
	for _, r := range ds.Records() {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			escapeCell(r.Location), model.FormatAge(r.HealthyLifeExpectancy), model.FormatAge(r.LifeExpectancy),
			model.FormatAge(r.RetirementAge), model.FormatAge(r.Span())))
	}
	return sb.String()
}

// WriteMarkdown writes GenerateMarkdown's output.
func WriteMarkdown(w io.Writer, ds model.Dataset, title string) error {
	_, err := io.WriteString(w, GenerateMarkdown(ds, title))
	return err
}

// RenderMarkdown styles markdown for the terminal. width <= 0 disables
// word wrapping.
func RenderMarkdown(md string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
