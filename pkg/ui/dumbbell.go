package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/model"
	"github.com/vanderheijden86/lifespan/pkg/scale"
)

// Glyphs drawn in the terminal plot.
const (
	GlyphHealthy    = '○'
	GlyphLife       = '●'
	GlyphRetirement = '◆'
	GlyphBar        = '─'
	GlyphGrid       = '┊'
	GlyphEmpty      = ' '
)

// cell is one plot column. class names the scene shape it stands for, so
// the renderer can pick up that shape's flags.
type cell struct {
	r     rune
	class string
}

// plotScale maps ages onto columns 0..width-1 with the chart's domain.
func plotScale(l chart.Layout, width int) scale.Linear {
	return scale.NewLinear(l.DomainMin, l.DomainMax, 0, float64(width-1))
}

func column(x scale.Linear, v float64, width int) int {
	c := int(math.Round(x.Map(v)))
	return max(0, min(width-1, c))
}

// layoutRow places a record's glyphs. Later glyphs overwrite earlier ones
// in the same order the scene draws them: gridlines, bar, healthy marker,
// life marker, retirement dot.
func layoutRow(r model.Record, ticks []float64, x scale.Linear, width int) []cell {
	cells := make([]cell, width)
	for i := range cells {
		cells[i] = cell{r: GlyphEmpty}
	}
	for _, t := range ticks {
		cells[column(x, t, width)] = cell{r: GlyphGrid, class: chart.ClassVerticalLine}
	}

	hc := column(x, r.HealthyLifeExpectancy, width)
	lc := column(x, r.LifeExpectancy, width)
	for i := min(hc, lc); i <= max(hc, lc); i++ {
		cells[i] = cell{r: GlyphBar, class: chart.ClassRangeBar}
	}
	cells[hc] = cell{r: GlyphHealthy, class: chart.ClassRangeStart}
	cells[lc] = cell{r: GlyphLife, class: chart.ClassRangeEnd}
	cells[column(x, r.RetirementAge, width)] = cell{r: GlyphRetirement, class: chart.ClassRetirement}
	return cells
}

// RenderPlot draws one record as an unstyled dumbbell of the given width.
func RenderPlot(r model.Record, l chart.Layout, ticks []float64, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range layoutRow(r, ticks, plotScale(l, width), width) {
		sb.WriteRune(c.r)
	}
	return sb.String()
}

// renderStyledPlot draws the dumbbell with each glyph styled from its
// scene shape. shapes maps class to the row's shape.
func renderStyledPlot(r model.Record, l chart.Layout, ticks []float64, width int, shapes map[string]*chart.Shape) string {
	var sb strings.Builder
	for _, c := range layoutRow(r, ticks, plotScale(l, width), width) {
		if c.class == "" {
			sb.WriteRune(c.r)
			continue
		}
		sb.WriteString(shapeStyle(classStyle(c.class), shapes[c.class]).Render(string(c.r)))
	}
	return sb.String()
}

// RenderAxis lays the tick labels over a plot of the given width, each
// centered on its column and kept inside the plot.
func RenderAxis(l chart.Layout, ticks []float64, width int) string {
	if width <= 0 {
		return ""
	}
	line := []rune(strings.Repeat(" ", width))
	x := plotScale(l, width)
	next := 0
	for _, t := range ticks {
		label := []rune(fmt.Sprintf("%g", t))
		start := column(x, t, width) - len(label)/2
		start = max(start, next)
		if start+len(label) > width {
			start = width - len(label)
		}
		if start < next || start < 0 {
			continue
		}
		copy(line[start:], label)
		next = start + len(label) + 1
	}
	return string(line)
}

// truncate shortens s to at most width cells, ending with an ellipsis
// when cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width-1, "") + "…"
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-runewidth.StringWidth(s)))
}

// legendGlyph is the swatch shown for a category.
func legendGlyph(c model.Category) string {
	switch c {
	case model.CategoryHealthy:
		return string(GlyphHealthy)
	case model.CategoryLife:
		return string(GlyphLife)
	default:
		return string(GlyphRetirement)
	}
}

// renderLegend draws the three legend entries with their scene flags.
func renderLegend(scene *chart.Scene) string {
	parts := make([]string, 0, len(model.Categories))
	for i, cat := range model.Categories {
		swatch, _ := scene.Shape(chart.ClassLegendItem + "-" + string(cat))
		label, _ := scene.Shape(chart.ClassLegendLabel + "-" + string(cat))
		part := fmt.Sprintf("[%d] %s %s",
			i+1,
			shapeStyle(classStyle(string(cat)), swatch).Render(legendGlyph(cat)),
			shapeStyle(LabelStyle, label).Render(cat.Label()))
		parts = append(parts, part)
	}
	return strings.Join(parts, "   ")
}
