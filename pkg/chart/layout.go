// Package chart builds the dumbbell chart scene: one shape per drawable
// element, positioned from a dataset and two scales.
//
// A Chart is an explicit instance; nothing is stored in package state, so
// several charts with different layouts can coexist. Shapes carry their
// interaction flags (dimmed, highlighted, bold) which the interact package
// flips and the exporters read.
package chart

import (
	"fmt"
	"strings"
)

// Layout variants.
const (
	VariantFull    = "full"
	VariantCompact = "compact"
)

// Margins around the plot area, in pixels.
type Margins struct {
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Left   float64 `yaml:"left" json:"left"`
}

// Palette holds the fixed fill and stroke colors.
type Palette struct {
	Healthy    string `yaml:"healthy" json:"healthy"`
	Life       string `yaml:"life" json:"life"`
	Retirement string `yaml:"retirement" json:"retirement"`
	Bar        string `yaml:"bar" json:"bar"`
	RowLine    string `yaml:"row_line" json:"row_line"`
	GridLine   string `yaml:"grid_line" json:"grid_line"`
	Axis       string `yaml:"axis" json:"axis"`
	Text       string `yaml:"text" json:"text"`
	Background string `yaml:"background" json:"background"`
}

// Layout is the fixed geometry of one chart variant.
type Layout struct {
	Name   string  `yaml:"name" json:"name"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
	Margin Margins `yaml:"margin" json:"margin"`

	DomainMin float64 `yaml:"domain_min" json:"domain_min"`
	DomainMax float64 `yaml:"domain_max" json:"domain_max"`
	TickStep  float64 `yaml:"tick_step" json:"tick_step"`
	Padding   float64 `yaml:"padding" json:"padding"`

	MarkerRadius        float64 `yaml:"marker_radius" json:"marker_radius"`
	ValueLabelOffset    float64 `yaml:"value_label_offset" json:"value_label_offset"`
	LocationLabelX      float64 `yaml:"location_label_x" json:"location_label_x"`
	LocationLabelAnchor string  `yaml:"location_label_anchor" json:"location_label_anchor"`
	// LocationLabelShift moves location labels down by this fraction of
	// the bandwidth.
	LocationLabelShift  float64 `yaml:"location_label_shift" json:"location_label_shift"`
	LegendY             float64 `yaml:"legend_y" json:"legend_y"`
	LegendFontSize      float64 `yaml:"legend_font_size" json:"legend_font_size"`
	FontSize            float64 `yaml:"font_size" json:"font_size"`

	Palette Palette `yaml:"palette" json:"palette"`
}

// DefaultPalette is the chart's fixed color scheme.
func DefaultPalette() Palette {
	return Palette{
		Healthy:    "#66c2ff",
		Life:       "#001449",
		Retirement: "red",
		Bar:        "#dddddd",
		RowLine:    "#f0f0f0",
		GridLine:   "#ddd",
		Axis:       "#000000",
		Text:       "#111111",
		Background: "#ffffff",
	}
}

// FullLayout is the 1000x3000 canvas with a wide label gutter.
func FullLayout() Layout {
	return Layout{
		Name:                VariantFull,
		Width:               1000,
		Height:              3000,
		Margin:              Margins{Top: 60, Right: 20, Bottom: 60, Left: 300},
		DomainMin:           40,
		DomainMax:           90,
		TickStep:            10,
		Padding:             0.3,
		MarkerRadius:        5,
		ValueLabelOffset:    10,
		LocationLabelX:      -250,
		LocationLabelAnchor: "start",
		LocationLabelShift:  0.125,
		LegendY:             -60,
		LegendFontSize:      12,
		FontSize:            10,
		Palette:             DefaultPalette(),
	}
}

// CompactLayout is the 800x2800 canvas with labels next to the axis.
func CompactLayout() Layout {
	l := FullLayout()
	l.Name = VariantCompact
	l.Width = 800
	l.Height = 2800
	l.Margin = Margins{Top: 60, Right: 20, Bottom: 60, Left: 180}
	l.LocationLabelX = -9
	l.LocationLabelAnchor = "end"
	l.LocationLabelShift = 0
	return l
}

// LayoutFor returns the preset for a variant name ("" means full).
func LayoutFor(variant string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case "", VariantFull:
		return FullLayout(), nil
	case VariantCompact:
		return CompactLayout(), nil
	default:
		return Layout{}, fmt.Errorf("unknown chart variant %q (want %s or %s)", variant, VariantFull, VariantCompact)
	}
}

// InnerWidth is the plot width inside the margins.
func (l Layout) InnerWidth() float64 {
	return l.Width - l.Margin.Left - l.Margin.Right
}

// InnerHeight is the plot height inside the margins.
func (l Layout) InnerHeight() float64 {
	return l.Height - l.Margin.Top - l.Margin.Bottom
}

// Validate rejects layouts that cannot hold a plot.
func (l Layout) Validate() error {
	if l.InnerWidth() <= 0 || l.InnerHeight() <= 0 {
		return fmt.Errorf("layout %q leaves no plot area (%gx%g with margins %+v)", l.Name, l.Width, l.Height, l.Margin)
	}
	if l.DomainMax <= l.DomainMin {
		return fmt.Errorf("layout %q has empty age domain [%g, %g]", l.Name, l.DomainMin, l.DomainMax)
	}
	if l.TickStep <= 0 {
		return fmt.Errorf("layout %q has non-positive tick step %g", l.Name, l.TickStep)
	}
	if l.Padding < 0 || l.Padding >= 1 {
		return fmt.Errorf("layout %q padding %g outside [0, 1)", l.Name, l.Padding)
	}
	return nil
}
