package chart

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/lifespan/pkg/model"
)

const (
	legendSwatchGap = 8  // between swatch edge and label start
	legendItemGap   = 30 // between a label end and the next swatch
	legendRowY      = 10 // vertical center inside the legend group
)

// LegendItem is one swatch + label pair. X values are relative to the plot
// origin; Y is relative to the legend group.
type LegendItem struct {
	Category   model.Category
	Label      string
	Color      string
	SwatchX    float64
	LabelX     float64
	LabelWidth float64
	Y          float64
}

// MeasureText estimates the rendered width of s at size px using the
// built-in 7x13 face scaled to the requested size.
func MeasureText(s string, size float64) float64 {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s)
	return float64(w.Ceil()) * size / float64(face.Height)
}

func buildLegend(l Layout) []LegendItem {
	colors := map[model.Category]string{
		model.CategoryHealthy:    l.Palette.Healthy,
		model.CategoryLife:       l.Palette.Life,
		model.CategoryRetirement: l.Palette.Retirement,
	}

	items := make([]LegendItem, 0, len(model.Categories))
	x := 0.0
	for _, cat := range model.Categories {
		label := cat.Label()
		width := MeasureText(label, l.LegendFontSize)
		item := LegendItem{
			Category:   cat,
			Label:      label,
			Color:      colors[cat],
			SwatchX:    x + l.MarkerRadius,
			LabelX:     x + 2*l.MarkerRadius + legendSwatchGap,
			LabelWidth: width,
			Y:          legendRowY,
		}
		items = append(items, item)
		x = item.LabelX + width + legendItemGap
	}
	return items
}
