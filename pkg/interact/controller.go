package interact

import (
	"fmt"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/debug"
	"github.com/vanderheijden86/lifespan/pkg/model"
)

// TooltipOffsetY lifts the tooltip above the pointer.
const TooltipOffsetY = 28

// Tooltip opacities while shown and hidden.
const (
	TooltipShownOpacity  = 0.9
	TooltipHiddenOpacity = 0
)

// Event names a controller input.
type Event string

const (
	EventHover         Event = "hover"
	EventClick         Event = "click"
	EventLeave         Event = "leave"
	EventClickLocation Event = "click-location"
	EventClickLegend   Event = "click-legend"
	EventClickOutside  Event = "click-outside"
)

// Transition records one state change (or non-change).
type Transition struct {
	Event Event
	From  model.Selection
	To    model.Selection
}

// Changed reports whether the selection moved.
func (t Transition) Changed() bool { return t.From != t.To }

func (t Transition) String() string {
	return fmt.Sprintf("%s: %s -> %s", t.Event, t.From, t.To)
}

// Tooltip is the overlay shown while a marker is hovered.
type Tooltip struct {
	Visible bool
	ShapeID string
	Text    string
	X, Y    float64
	Opacity float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithTransitionHook is called after every click transition.
func WithTransitionHook(fn func(Transition)) Option {
	return func(c *Controller) {
		c.onTransition = fn
	}
}

// Controller owns the selection for one chart and keeps the scene's
// dimmed/highlighted/bold flags in sync with it. It is not safe for
// concurrent use; drive it from a single goroutine.
type Controller struct {
	chart        *chart.Chart
	sel          model.Selection
	tooltip      Tooltip
	onTransition func(Transition)
}

// NewController attaches a controller to a chart and resets it to Unselected.
func NewController(c *chart.Chart, opts ...Option) *Controller {
	ctl := &Controller{
		chart:        c,
		onTransition: func(Transition) {},
	}
	for _, opt := range opts {
		opt(ctl)
	}
	ctl.apply()
	return ctl
}

// Chart returns the controlled chart.
func (c *Controller) Chart() *chart.Chart { return c.chart }

// Selection returns the active selection.
func (c *Controller) Selection() model.Selection { return c.sel }

// Tooltip returns the tooltip state.
func (c *Controller) Tooltip() Tooltip { return c.tooltip }

// DimSet returns the dim set of the active selection.
func (c *Controller) DimSet() DimSet {
	return ComputeDimSet(c.sel, c.chart.Dataset().Records())
}

// Hover shows the tooltip for a marker at pointer position (x, y).
// It returns false, leaving the tooltip unchanged, for shapes without one.
func (c *Controller) Hover(shapeID string, x, y float64) bool {
	sh, ok := c.chart.Scene().Shape(shapeID)
	if !ok || !sh.Hoverable() {
		return false
	}
	c.tooltip = Tooltip{
		Visible: true,
		ShapeID: sh.ID,
		Text:    sh.Tooltip,
		X:       x,
		Y:       y - TooltipOffsetY,
		Opacity: TooltipShownOpacity,
	}
	debug.Log("interact: %s %s", EventHover, sh.ID)
	return true
}

// Leave hides the tooltip.
func (c *Controller) Leave() {
	c.tooltip.Visible = false
	c.tooltip.Opacity = TooltipHiddenOpacity
}

// ClickLocation toggles selection of a location label.
func (c *Controller) ClickLocation(location string) (Transition, error) {
	if _, ok := c.chart.Dataset().Lookup(location); !ok {
		return Transition{}, fmt.Errorf("location %q: %w", location, model.ErrUnknownTarget)
	}
	return c.toggle(EventClickLocation, model.LocationSelection(location)), nil
}

// ClickLegend toggles selection of a legend category.
func (c *Controller) ClickLegend(cat model.Category) (Transition, error) {
	if !cat.IsValid() {
		return Transition{}, fmt.Errorf("category %q: %w", cat, model.ErrUnknownTarget)
	}
	return c.toggle(EventClickLegend, model.CategorySelection(cat)), nil
}

// Click dispatches a click on a shape. Clicks on shapes that are not
// selection triggers leave the state unchanged.
func (c *Controller) Click(shapeID string) (Transition, error) {
	sh, ok := c.chart.Scene().Shape(shapeID)
	if !ok {
		return Transition{}, fmt.Errorf("shape %q: %w", shapeID, model.ErrUnknownTarget)
	}
	sel, ok := SelectionFor(sh)
	if !ok {
		return Transition{Event: EventClick, From: c.sel, To: c.sel}, nil
	}
	if sel.Kind == model.SelectLocation {
		return c.ClickLocation(sel.Location)
	}
	return c.ClickLegend(sel.Category)
}

// ClickOutside clears any selection.
func (c *Controller) ClickOutside() Transition {
	return c.transition(EventClickOutside, model.NoSelection)
}

// Refresh reapplies the current selection, e.g. after the chart re-sorted.
func (c *Controller) Refresh() {
	c.apply()
}

func (c *Controller) toggle(ev Event, target model.Selection) Transition {
	if c.sel == target {
		return c.transition(ev, model.NoSelection)
	}
	return c.transition(ev, target)
}

func (c *Controller) transition(ev Event, to model.Selection) Transition {
	t := Transition{Event: ev, From: c.sel, To: to}
	c.sel = to
	c.apply()
	debug.Log("interact: %s", t)
	c.onTransition(t)
	return t
}

// apply rewrites every shape's flags from the current selection in one
// pass, so switching selections never passes through an Unselected render.
func (c *Controller) apply() {
	dims := c.DimSet()
	for _, sh := range c.chart.Scene().Shapes {
		sh.Dimmed = dims.Dims(sh)
		hl := Highlights(c.sel, sh)
		sh.Highlighted = hl
		sh.Bold = hl
	}
}
