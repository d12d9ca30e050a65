package export

import (
	_ "embed"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/interact"
)

//go:embed assets/chart.css
var chartCSS string

// PlotGroupID is the id of the group holding every chart shape.
const PlotGroupID = "plot"

// WriteSVG writes the chart as a standalone SVG document. Shapes keep
// their scene ids; classes carry the current dimmed/highlighted/bold flags
// and are styled by an embedded stylesheet.
func WriteSVG(w io.Writer, c *chart.Chart, title string) error {
	ew := &errWriter{w: w}
	renderSVG(ew, c, title, true)
	return ew.err
}

func renderSVG(w io.Writer, c *chart.Chart, title string, standalone bool) {
	scene := c.Scene()
	pal := c.Layout().Palette

	canvas := svg.New(w)
	width, height := px(scene.Width), px(scene.Height)
	if standalone {
		canvas.Start(width, height, `font-family="sans-serif"`)
	} else {
		// inline in HTML: no XML prolog or namespaces needed
		fmt.Fprintf(w, "<svg width=\"%d\" height=\"%d\" font-family=\"sans-serif\">\n", width, height)
	}
	canvas.Title(title)
	canvas.Style("text/css", chartCSS)
	canvas.Rect(0, 0, width, height, "fill:"+pal.Background)

	canvas.Group(attr("id", PlotGroupID),
		fmt.Sprintf(`transform="translate(%d,%d)"`, px(scene.OriginX), px(scene.OriginY)))
	for _, sh := range scene.Shapes {
		drawShapeSVG(canvas, sh)
	}
	canvas.Gend()
	canvas.End()
}

func drawShapeSVG(canvas *svg.SVG, sh *chart.Shape) {
	attrs := shapeAttrs(sh)
	switch sh.Kind {
	case chart.KindLine:
		canvas.Line(px(sh.X), px(sh.Y), px(sh.X2), px(sh.Y2), append(attrs, strokeStyle(sh))...)
	case chart.KindRect:
		x, w := sh.X, sh.W
		if w < 0 {
			x, w = x+w, -w
		}
		canvas.Rect(px(x), px(sh.Y), px(w), px(sh.H), append(attrs, "fill:"+sh.Fill)...)
	case chart.KindCircle:
		canvas.Circle(px(sh.X), px(sh.Y), px(sh.R), append(attrs, "fill:"+sh.Fill)...)
	case chart.KindText:
		if sh.Anchor != "" {
			attrs = append(attrs, attr("text-anchor", sh.Anchor))
		}
		if sh.DY != "" {
			attrs = append(attrs, attr("dy", sh.DY))
		}
		style := fmt.Sprintf("fill:%s;font-size:%gpx", sh.Fill, sh.FontSize)
		canvas.Text(px(sh.X), px(sh.Y), sh.Text, append(attrs, style)...)
	}
}

// shapeAttrs returns the raw attributes shared by every element: id,
// classes, the joined key and, for selection triggers, the selection key
// the page script toggles.
func shapeAttrs(sh *chart.Shape) []string {
	classes := []string{sh.Class}
	if sh.Dimmed {
		classes = append(classes, "dimmed")
	}
	if sh.Highlighted {
		classes = append(classes, "highlighted")
	}
	if sh.Bold {
		classes = append(classes, "bold")
	}
	out := []string{attr("id", sh.ID), attr("class", strings.Join(classes, " "))}
	if sh.Key != "" {
		out = append(out, attr("data-key", sh.Key))
	}
	if sel, ok := interact.SelectionFor(sh); ok {
		out = append(out, attr("data-select", sel.Key()))
	}
	return out
}

func strokeStyle(sh *chart.Shape) string {
	style := fmt.Sprintf("stroke:%s;stroke-width:%g", sh.Stroke, sh.StrokeWidth)
	if sh.Dash != "" {
		style += ";stroke-dasharray:" + sh.Dash
	}
	return style
}

// attr formats name="value" with the value escaped. svgo passes strings
// containing '=' through as raw attributes and wraps the rest in style.
func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func px(v float64) int {
	return int(math.Round(v))
}

// errWriter remembers the first write error, since svgo drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
