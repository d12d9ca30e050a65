package export

import (
	"image/color"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/lifespan/pkg/chart"
)

// DimmedAlpha is the alpha applied to dimmed shapes in raster output.
const DimmedAlpha = 0.15

// RenderPNG rasterizes the chart into a drawing context.
func RenderPNG(c *chart.Chart) *gg.Context {
	scene := c.Scene()
	pal := c.Layout().Palette

	dc := gg.NewContext(px(scene.Width), px(scene.Height))
	dc.SetColor(parseColor(pal.Background))
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.Push()
	dc.Translate(scene.OriginX, scene.OriginY)
	for _, sh := range scene.Shapes {
		drawShapePNG(dc, sh)
	}
	dc.Pop()
	return dc
}

// SavePNG renders the chart and writes it to path.
func SavePNG(path string, c *chart.Chart) error {
	return RenderPNG(c).SavePNG(path)
}

func drawShapePNG(dc *gg.Context, sh *chart.Shape) {
	switch sh.Kind {
	case chart.KindLine:
		dc.SetColor(shapeColor(sh.Stroke, sh))
		dc.SetLineWidth(sh.StrokeWidth)
		if dashes := parseDash(sh.Dash); len(dashes) > 0 {
			dc.SetDash(dashes...)
		}
		dc.DrawLine(sh.X, sh.Y, sh.X2, sh.Y2)
		dc.Stroke()
		dc.SetDash()
	case chart.KindRect:
		x, w := sh.X, sh.W
		if w < 0 {
			x, w = x+w, -w
		}
		dc.SetColor(shapeColor(sh.Fill, sh))
		dc.DrawRectangle(x, sh.Y, w, sh.H)
		dc.Fill()
	case chart.KindCircle:
		dc.SetColor(shapeColor(sh.Fill, sh))
		dc.DrawCircle(sh.X, sh.Y, sh.R)
		dc.Fill()
	case chart.KindText:
		dc.SetColor(shapeColor(sh.Fill, sh))
		ax := 0.0
		switch sh.Anchor {
		case "middle":
			ax = 0.5
		case "end":
			ax = 1
		}
		// y is the baseline unless dy shifts the text down: 0.71em hangs
		// below y, the smaller offsets center on it.
		ay := 0.0
		switch {
		case sh.DY == "0.71em":
			ay = 1
		case sh.DY != "":
			ay = 0.5
		}
		if sh.Bold {
			// basicfont has no bold face; overstrike by one pixel
			dc.DrawStringAnchored(sh.Text, sh.X+1, sh.Y, ax, ay)
		}
		dc.DrawStringAnchored(sh.Text, sh.X, sh.Y, ax, ay)
	}
}

func shapeColor(s string, sh *chart.Shape) color.Color {
	c := parseColor(s)
	if sh.Highlighted && sh.Kind == chart.KindText {
		c = color.RGBA{A: 0xff}
	}
	if sh.Dimmed {
		c.A = uint8(float64(c.A) * DimmedAlpha)
		// gg expects premultiplied colors
		c.R = uint8(float64(c.R) * DimmedAlpha)
		c.G = uint8(float64(c.G) * DimmedAlpha)
		c.B = uint8(float64(c.B) * DimmedAlpha)
	}
	return c
}

// parseColor accepts #rgb, #rrggbb and SVG color names. Unknown values
// render black.
func parseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{A: 0xff}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func parseDash(s string) []float64 {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil && v > 0 {
			out = append(out, v)
		}
	}
	return out
}
