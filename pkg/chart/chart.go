package chart

import (
	"fmt"
	"sort"
	"time"

	"github.com/vanderheijden86/lifespan/pkg/debug"
	"github.com/vanderheijden86/lifespan/pkg/metrics"
	"github.com/vanderheijden86/lifespan/pkg/model"
	"github.com/vanderheijden86/lifespan/pkg/scale"
)

// Chart is one rendered instance of the dumbbell chart.
type Chart struct {
	layout Layout
	data   model.Dataset
	x      scale.Linear
	y      scale.Band
	ticks  []float64
	scene  *Scene
	legend []LegendItem

	// rowIndex maps a location to its index in the dataset the chart was
	// built from; shape ids use it so they survive re-sorting.
	rowIndex map[string]int
}

// New lays out a chart for the dataset.
func New(layout Layout, data model.Dataset) (*Chart, error) {
	defer metrics.Timer(metrics.Layout)()
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if data.Len() == 0 {
		return nil, model.ErrEmptyDataset
	}
	start := time.Now()

	c := &Chart{
		layout:   layout,
		data:     data,
		x:        scale.NewLinear(layout.DomainMin, layout.DomainMax, 0, layout.InnerWidth()),
		y:        scale.NewBand(data.Locations(), 0, layout.InnerHeight(), layout.Padding),
		ticks:    scale.Ticks(layout.DomainMin, layout.DomainMax, layout.TickStep),
		rowIndex: make(map[string]int, data.Len()),
	}
	for i, loc := range data.Locations() {
		c.rowIndex[loc] = i
	}
	c.build()

	debug.LogTiming(fmt.Sprintf("chart.New(%s, %d records, %d shapes)", layout.Name, data.Len(), len(c.scene.Shapes)), time.Since(start))
	return c, nil
}

// Layout returns the chart geometry.
func (c *Chart) Layout() Layout { return c.layout }

// Dataset returns the records in current display order.
func (c *Chart) Dataset() model.Dataset { return c.data }

// X is the horizontal age scale.
func (c *Chart) X() scale.Linear { return c.x }

// Y is the vertical location scale.
func (c *Chart) Y() scale.Band { return c.y }

// Ticks are the fixed age tick values shared by both axes and the gridlines.
func (c *Chart) Ticks() []float64 { return append([]float64(nil), c.ticks...) }

// Scene returns the live scene. Interaction flags are mutated in place.
func (c *Chart) Scene() *Scene { return c.scene }

// Legend returns the legend entries in display order.
func (c *Chart) Legend() []LegendItem { return append([]LegendItem(nil), c.legend...) }

// RowCenter is the shared vertical center of every shape for location.
func (c *Chart) RowCenter(location string) (float64, bool) {
	return c.y.Center(location)
}

// SortByLocation reorders rows alphabetically and moves every keyed shape
// to its new band. Shape ids and interaction flags are kept.
func (c *Chart) SortByLocation() {
	c.data = c.data.SortedByLocation()
	c.y = c.y.WithKeys(c.data.Locations())
	c.relayoutRows()
	debug.Log("chart: sorted %d rows by location", c.data.Len())
}

func (c *Chart) build() {
	l := c.layout
	c.scene = newScene(l)
	w := l.InnerWidth()
	h := l.InnerHeight()

	for _, r := range c.data.Records() {
		center, _ := c.y.Center(r.Location)
		c.scene.add(&Shape{
			ID: c.rowID(ClassRowLine, r.Location), Kind: KindLine, Class: ClassRowLine, Key: r.Location,
			X: 0, Y: center, X2: w, Y2: center,
			Stroke: l.Palette.RowLine, StrokeWidth: 1, Dash: "2,2",
		})
	}

	c.addAxes(w, h)

	for _, tick := range c.ticks {
		x := c.x.Map(tick)
		c.scene.add(&Shape{
			ID: fmt.Sprintf("%s-%g", ClassVerticalLine, tick), Kind: KindLine, Class: ClassVerticalLine,
			X: x, Y: 0, X2: x, Y2: h,
			Stroke: l.Palette.GridLine, StrokeWidth: 1, Dash: "2,2",
		})
	}

	c.addLocationTicks()

	for _, r := range c.data.Records() {
		c.addRecord(r)
	}

	c.legend = buildLegend(l)
	for _, item := range c.legend {
		c.addLegendItem(item)
	}
}

func (c *Chart) addAxes(w, h float64) {
	l := c.layout
	axis := func(id string, x1, y1, x2, y2 float64) {
		c.scene.add(&Shape{
			ID: id, Kind: KindLine, Class: ClassAxisDomain,
			X: x1, Y: y1, X2: x2, Y2: y2, Stroke: l.Palette.Axis, StrokeWidth: 1,
		})
	}
	axis("axis-domain-top", 0, 0, w, 0)
	axis("axis-domain-bottom", 0, h, w, h)
	axis("axis-domain-left", 0, 0, 0, h)

	for _, tick := range c.ticks {
		label := fmt.Sprintf("%g", tick)
		x := c.x.Map(tick)
		c.scene.add(&Shape{
			ID: fmt.Sprintf("%s-%g", ClassAxisTop, tick), Kind: KindText, Class: ClassAxisTop,
			X: x, Y: -9, Text: label, Anchor: "middle", FontSize: l.FontSize, Fill: l.Palette.Text,
		})
		c.scene.add(&Shape{
			ID: fmt.Sprintf("%s-%g", ClassAxisBottom, tick), Kind: KindText, Class: ClassAxisBottom,
			X: x, Y: h + 9, DY: "0.71em", Text: label, Anchor: "middle", FontSize: l.FontSize, Fill: l.Palette.Text,
		})
	}
}

func (c *Chart) addLocationTicks() {
	l := c.layout
	for _, loc := range c.data.Locations() {
		center, _ := c.y.Center(loc)
		c.scene.add(&Shape{
			ID: c.rowID(ClassLocationTick, loc), Kind: KindText, Class: ClassLocationTick, Key: loc,
			X: l.LocationLabelX, Y: center + c.y.Bandwidth()*l.LocationLabelShift, DY: "0.32em",
			Text: loc, Anchor: l.LocationLabelAnchor, FontSize: l.FontSize, Fill: l.Palette.Text,
		})
	}
}

func (c *Chart) addRecord(r model.Record) {
	l := c.layout
	band, _ := c.y.Position(r.Location)
	bw := c.y.Bandwidth()
	center := band + bw/2
	xh := c.x.Map(r.HealthyLifeExpectancy)
	xl := c.x.Map(r.LifeExpectancy)
	xr := c.x.Map(r.RetirementAge)

	c.scene.add(&Shape{
		ID: c.rowID(ClassRangeBar, r.Location), Kind: KindRect, Class: ClassRangeBar, Key: r.Location,
		X: xh, Y: band + bw/4, W: xl - xh, H: bw / 2, Fill: l.Palette.Bar,
	})
	c.scene.add(&Shape{
		ID: c.rowID(ClassRangeStart, r.Location), Kind: KindCircle, Class: ClassRangeStart, Key: r.Location,
		X: xh, Y: center, R: l.MarkerRadius, Fill: l.Palette.Healthy,
		Tooltip: model.CategoryHealthy.Tooltip(r),
	})
	c.scene.add(&Shape{
		ID: c.rowID(ClassRangeEnd, r.Location), Kind: KindCircle, Class: ClassRangeEnd, Key: r.Location,
		X: xl, Y: center, R: l.MarkerRadius, Fill: l.Palette.Life,
		Tooltip: model.CategoryLife.Tooltip(r),
	})
	c.scene.add(&Shape{
		ID: c.rowID(ClassHealthyText, r.Location), Kind: KindText, Class: ClassHealthyText, Key: r.Location,
		X: xh - l.ValueLabelOffset, Y: center, DY: "0.35em", Anchor: "end",
		Text: model.FormatAge(r.HealthyLifeExpectancy), FontSize: l.FontSize, Fill: l.Palette.Text,
	})
	c.scene.add(&Shape{
		ID: c.rowID(ClassLifeText, r.Location), Kind: KindText, Class: ClassLifeText, Key: r.Location,
		X: xl + l.ValueLabelOffset, Y: center, DY: "0.35em", Anchor: "start",
		Text: model.FormatAge(r.LifeExpectancy), FontSize: l.FontSize, Fill: l.Palette.Text,
	})
	c.scene.add(&Shape{
		ID: c.rowID(ClassRetirement, r.Location), Kind: KindCircle, Class: ClassRetirement, Key: r.Location,
		X: xr, Y: center, R: l.MarkerRadius, Fill: l.Palette.Retirement,
		Tooltip: model.CategoryRetirement.Tooltip(r),
	})
}

func (c *Chart) addLegendItem(item LegendItem) {
	l := c.layout
	key := string(item.Category)
	c.scene.add(&Shape{
		ID: ClassLegendItem + "-" + key, Kind: KindCircle, Class: ClassLegendItem, Key: key,
		X: item.SwatchX, Y: l.LegendY + item.Y, R: l.MarkerRadius, Fill: item.Color,
	})
	c.scene.add(&Shape{
		ID: ClassLegendLabel + "-" + key, Kind: KindText, Class: ClassLegendLabel, Key: key,
		X: item.LabelX, Y: l.LegendY + item.Y, DY: "0.35em", Anchor: "start",
		Text: item.Label, FontSize: l.LegendFontSize, Fill: l.Palette.Text,
	})
}

// relayoutRows moves keyed shapes to their current band without rebuilding.
func (c *Chart) relayoutRows() {
	bw := c.y.Bandwidth()
	for _, sh := range c.scene.Shapes {
		if sh.Key == "" {
			continue
		}
		band, ok := c.y.Position(sh.Key)
		if !ok {
			continue // legend shapes are keyed by category
		}
		center := band + bw/2
		switch sh.Class {
		case ClassRowLine:
			sh.Y, sh.Y2 = center, center
		case ClassRangeBar:
			sh.Y = band + bw/4
		case ClassLocationTick:
			sh.Y = center + bw*c.layout.LocationLabelShift
		default:
			sh.Y = center
		}
	}
	// keep draw order aligned with row order for readers that walk rows
	c.reorderRowShapes()
}

func (c *Chart) reorderRowShapes() {
	order := make(map[string]int, c.data.Len())
	for i, loc := range c.data.Locations() {
		order[loc] = i
	}
	// stable partition per class: rows of the same class swap positions
	// among themselves only, so layering between classes is unchanged
	slots := make(map[string][]int)
	for i, sh := range c.scene.Shapes {
		if _, ok := order[sh.Key]; ok {
			slots[sh.Class] = append(slots[sh.Class], i)
		}
	}
	for _, idx := range slots {
		shapes := make([]*Shape, len(idx))
		for j, i := range idx {
			shapes[j] = c.scene.Shapes[i]
		}
		sortShapes(shapes, order)
		for j, i := range idx {
			c.scene.Shapes[i] = shapes[j]
		}
	}
}

func (c *Chart) rowID(class, location string) string {
	return fmt.Sprintf("%s-%d", class, c.rowIndex[location])
}

func sortShapes(shapes []*Shape, order map[string]int) {
	sort.SliceStable(shapes, func(i, j int) bool {
		return order[shapes[i].Key] < order[shapes[j].Key]
	})
}
