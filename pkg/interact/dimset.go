// Package interact implements the chart's highlight state machine.
//
// There are two states: Unselected and Selected(key), where key is a
// location or a legend category. Clicking a location label or legend entry
// selects it; clicking the selected entry again, or clicking outside the
// chart, returns to Unselected; clicking a different entry switches the
// selection directly. Hovering a marker shows its tooltip without touching
// the selection.
package interact

import (
	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/model"
)

// DimSet describes which shapes a selection dims. It is derived from the
// selection and the records alone, so it can be computed without a scene.
type DimSet struct {
	// Locations whose data shapes are dimmed.
	Locations map[string]bool
	// Categories whose markers and legend entries are dimmed everywhere.
	Categories map[model.Category]bool
}

// Empty reports whether nothing is dimmed.
func (d DimSet) Empty() bool {
	return len(d.Locations) == 0 && len(d.Categories) == 0
}

// Dims reports whether the shape is dimmed under this set.
func (d DimSet) Dims(sh *chart.Shape) bool {
	if d.Locations[sh.Key] && chart.IsDataClass(sh.Class) {
		return true
	}
	if len(d.Categories) == 0 {
		return false
	}
	if chart.IsMarkerClass(sh.Class) && d.Categories[model.Category(sh.Class)] {
		return true
	}
	switch sh.Class {
	case chart.ClassLegendItem, chart.ClassLegendLabel:
		return d.Categories[model.Category(sh.Key)]
	}
	return false
}

// ComputeDimSet returns what a selection dims over the given records.
//
// A location selection dims the data shapes of every other location. A
// category selection dims the markers (and legend entries) of the other
// categories for all locations; bars, value labels and row lines are left
// alone.
func ComputeDimSet(sel model.Selection, records []model.Record) DimSet {
	d := DimSet{
		Locations:  map[string]bool{},
		Categories: map[model.Category]bool{},
	}
	switch sel.Kind {
	case model.SelectLocation:
		for _, r := range records {
			if r.Location != sel.Location {
				d.Locations[r.Location] = true
			}
		}
	case model.SelectCategory:
		for _, c := range model.Categories {
			if c != sel.Category {
				d.Categories[c] = true
			}
		}
	}
	return d
}

// Highlights reports whether the shape is the clicked selection trigger.
func Highlights(sel model.Selection, sh *chart.Shape) bool {
	switch sel.Kind {
	case model.SelectLocation:
		return sh.Class == chart.ClassLocationTick && sh.Key == sel.Location
	case model.SelectCategory:
		return (sh.Class == chart.ClassLegendItem || sh.Class == chart.ClassLegendLabel) &&
			sh.Key == string(sel.Category)
	}
	return false
}

// SelectionFor returns the selection a click on sh toggles. Only location
// labels and legend entries are selection triggers.
func SelectionFor(sh *chart.Shape) (model.Selection, bool) {
	switch sh.Class {
	case chart.ClassLocationTick:
		return model.LocationSelection(sh.Key), true
	case chart.ClassLegendItem, chart.ClassLegendLabel:
		return model.CategorySelection(model.Category(sh.Key)), true
	}
	return model.NoSelection, false
}
