package interact

import (
	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/model"
)

// SelectionState lists the shape ids a selection dims and highlights.
type SelectionState struct {
	Dimmed      []string `json:"dimmed"`
	Highlighted []string `json:"highlighted"`
}

// Selectables lists every selection a user can make on the chart: each
// location in row order, then each legend category.
func Selectables(c *chart.Chart) []model.Selection {
	locs := c.Dataset().Locations()
	out := make([]model.Selection, 0, len(locs)+len(model.Categories))
	for _, loc := range locs {
		out = append(out, model.LocationSelection(loc))
	}
	for _, cat := range model.Categories {
		out = append(out, model.CategorySelection(cat))
	}
	return out
}

// SelectionTable precomputes the flags of every selectable state keyed by
// Selection.Key, without touching the scene.
func SelectionTable(c *chart.Chart) map[string]SelectionState {
	records := c.Dataset().Records()
	shapes := c.Scene().Shapes
	table := make(map[string]SelectionState)
	for _, sel := range Selectables(c) {
		dims := ComputeDimSet(sel, records)
		state := SelectionState{Dimmed: []string{}, Highlighted: []string{}}
		for _, sh := range shapes {
			if dims.Dims(sh) {
				state.Dimmed = append(state.Dimmed, sh.ID)
			}
			if Highlights(sel, sh) {
				state.Highlighted = append(state.Highlighted, sh.ID)
			}
		}
		table[sel.Key()] = state
	}
	return table
}
