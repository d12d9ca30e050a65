package model

import "fmt"

// Category is a marker class that the legend can select.
type Category string

const (
	CategoryHealthy    Category = "range-start"
	CategoryLife       Category = "range-end"
	CategoryRetirement Category = "retirement-age-dot"
)

// Categories lists the legend categories in legend order.
var Categories = []Category{CategoryHealthy, CategoryLife, CategoryRetirement}

// IsValid reports whether c is one of the legend categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryHealthy, CategoryLife, CategoryRetirement:
		return true
	}
	return false
}

// Label returns the legend label.
func (c Category) Label() string {
	switch c {
	case CategoryHealthy:
		return "Healthy Life Exp."
	case CategoryLife:
		return "Life Expectancy"
	case CategoryRetirement:
		return "Retirement Age"
	}
	return string(c)
}

// Value extracts the field this category plots from a record.
func (c Category) Value(r Record) float64 {
	switch c {
	case CategoryHealthy:
		return r.HealthyLifeExpectancy
	case CategoryLife:
		return r.LifeExpectancy
	default:
		return r.RetirementAge
	}
}

// Tooltip formats the hover text for a record's marker.
func (c Category) Tooltip(r Record) string {
	var prefix string
	switch c {
	case CategoryHealthy:
		prefix = "Average Healthy Life Expectancy"
	case CategoryLife:
		prefix = "Average Life Expectancy"
	default:
		prefix = "Average Retirement Age"
	}
	return fmt.Sprintf("%s: %s", prefix, FormatAge(c.Value(r)))
}

// FormatAge renders an age with exactly one decimal place.
func FormatAge(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// SelectionKind distinguishes what a selection refers to.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectLocation
	SelectCategory
)

// Selection is the single active highlight, if any.
type Selection struct {
	Kind     SelectionKind
	Location string
	Category Category
}

// NoSelection is the zero selection.
var NoSelection = Selection{}

// LocationSelection selects a single location.
func LocationSelection(location string) Selection {
	return Selection{Kind: SelectLocation, Location: location}
}

// CategorySelection selects a legend category.
func CategorySelection(c Category) Selection {
	return Selection{Kind: SelectCategory, Category: c}
}

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool { return s.Kind == SelectNone }

// Key returns a stable identifier, e.g. "location:Japan" or "category:range-end".
func (s Selection) Key() string {
	switch s.Kind {
	case SelectLocation:
		return "location:" + s.Location
	case SelectCategory:
		return "category:" + string(s.Category)
	}
	return ""
}

func (s Selection) String() string {
	if s.IsNone() {
		return "unselected"
	}
	return s.Key()
}
