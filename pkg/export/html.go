package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/interact"
	"github.com/vanderheijden86/lifespan/pkg/version"
)

//go:embed assets/page.html.tmpl
var pageTemplate string

//go:embed assets/chart.js
var chartJS string

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// PageState is the data the page script reads. Every selection is
// computed in Go ahead of time; the script only swaps classes.
type PageState struct {
	// Selections maps Selection.Key to the ids it dims and highlights.
	Selections map[string]interact.SelectionState `json:"selections"`
	// Tooltips maps hoverable shape ids to their text.
	Tooltips       map[string]string `json:"tooltips"`
	TooltipOffsetY float64           `json:"tooltipOffsetY"`
	TooltipOpacity float64           `json:"tooltipOpacity"`
	// Active is the selection key in effect when the page was written.
	Active string `json:"active,omitempty"`
}

// BuildPageState precomputes the interaction tables for a chart.
func BuildPageState(c *chart.Chart) PageState {
	st := PageState{
		Selections:     interact.SelectionTable(c),
		Tooltips:       make(map[string]string),
		TooltipOffsetY: interact.TooltipOffsetY,
		TooltipOpacity: interact.TooltipShownOpacity,
	}
	for _, sh := range c.Scene().Shapes {
		if sh.Hoverable() {
			st.Tooltips[sh.ID] = sh.Tooltip
		}
		if sh.Highlighted {
			if sel, ok := interact.SelectionFor(sh); ok {
				st.Active = sel.Key()
			}
		}
	}
	return st
}

// WriteHTML writes a self-contained interactive page: inline SVG, the
// precomputed page state and a small script applying it.
func WriteHTML(w io.Writer, c *chart.Chart, title string) error {
	var svgBuf bytes.Buffer
	renderSVG(&svgBuf, c, title, false)

	state, err := json.Marshal(BuildPageState(c))
	if err != nil {
		return fmt.Errorf("encode page state: %w", err)
	}

	return pageTmpl.Execute(w, struct {
		Title   string
		Version string
		SVG     template.HTML
		State   template.JS
		Script  template.JS
	}{
		Title:   title,
		Version: version.Version,
		SVG:     template.HTML(svgBuf.String()),
		State:   template.JS(state),
		Script:  template.JS(chartJS),
	})
}
