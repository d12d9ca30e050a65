package interact

import (
	"errors"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/model"
	"github.com/vanderheijden86/lifespan/pkg/testutil"
)

func newTestController(t testing.TB, opts ...Option) *Controller {
	t.Helper()
	c, err := chart.New(chart.FullLayout(), testutil.SampleDataset())
	if err != nil {
		t.Fatalf("chart.New: %v", err)
	}
	return NewController(c, opts...)
}

func dimmedIDs(ctl *Controller) []string {
	ids := ctl.Chart().Scene().DimmedIDs()
	sort.Strings(ids)
	return ids
}

func assertNothingDimmed(t *testing.T, ctl *Controller) {
	t.Helper()
	for _, sh := range ctl.Chart().Scene().Shapes {
		if sh.Dimmed || sh.Highlighted || sh.Bold {
			t.Fatalf("shape %s still flagged (dimmed=%v highlighted=%v bold=%v)", sh.ID, sh.Dimmed, sh.Highlighted, sh.Bold)
		}
	}
}

func TestComputeDimSet_Location(t *testing.T) {
	records := testutil.SampleRecords()
	d := ComputeDimSet(model.LocationSelection("Japan"), records)
	if d.Locations["Japan"] {
		t.Error("selected location must not be dimmed")
	}
	if len(d.Locations) != len(records)-1 {
		t.Errorf("dimmed %d locations, want %d", len(d.Locations), len(records)-1)
	}
	if len(d.Categories) != 0 {
		t.Errorf("location selection should not dim categories: %v", d.Categories)
	}
}

func TestComputeDimSet_CategoryAndNone(t *testing.T) {
	d := ComputeDimSet(model.CategorySelection(model.CategoryLife), testutil.SampleRecords())
	if d.Categories[model.CategoryLife] || !d.Categories[model.CategoryHealthy] || !d.Categories[model.CategoryRetirement] {
		t.Errorf("category dims = %v", d.Categories)
	}
	if len(d.Locations) != 0 {
		t.Errorf("category selection should not dim locations: %v", d.Locations)
	}
	if !ComputeDimSet(model.NoSelection, testutil.SampleRecords()).Empty() {
		t.Error("no selection should dim nothing")
	}
}

func TestClickLocation_HighlightsExactlyThatLocation(t *testing.T) {
	ctl := newTestController(t)
	tr, err := ctl.ClickLocation("Brazil")
	if err != nil {
		t.Fatalf("ClickLocation: %v", err)
	}
	if !tr.Changed() || tr.To != model.LocationSelection("Brazil") {
		t.Errorf("transition = %v", tr)
	}

	for _, sh := range ctl.Chart().Scene().Shapes {
		switch {
		case chart.IsDataClass(sh.Class):
			if want := sh.Key != "Brazil"; sh.Dimmed != want {
				t.Errorf("%s dimmed=%v, want %v", sh.ID, sh.Dimmed, want)
			}
		case sh.Class == chart.ClassLocationTick:
			if want := sh.Key == "Brazil"; sh.Highlighted != want || sh.Bold != want {
				t.Errorf("%s highlighted=%v bold=%v, want %v", sh.ID, sh.Highlighted, sh.Bold, want)
			}
		default:
			if sh.Dimmed {
				t.Errorf("%s (%s) should never be dimmed by a location", sh.ID, sh.Class)
			}
		}
	}
}

func TestClickLocation_TwiceRestores(t *testing.T) {
	ctl := newTestController(t)
	_, _ = ctl.ClickLocation("Japan")
	tr, _ := ctl.ClickLocation("Japan")
	if tr.To != model.NoSelection {
		t.Errorf("second click should unselect, got %v", tr)
	}
	assertNothingDimmed(t, ctl)
}

func TestClickLocation_SwitchesDirectly(t *testing.T) {
	var seen []Transition
	ctl := newTestController(t, WithTransitionHook(func(tr Transition) { seen = append(seen, tr) }))

	_, _ = ctl.ClickLocation("Japan")
	_, _ = ctl.ClickLocation("Nigeria")

	if len(seen) != 2 {
		t.Fatalf("transitions = %v", seen)
	}
	if seen[1].From != model.LocationSelection("Japan") || seen[1].To != model.LocationSelection("Nigeria") {
		t.Errorf("expected direct Japan -> Nigeria, got %v", seen[1])
	}
	for _, sh := range ctl.Chart().Scene().ByKey("Japan") {
		if sh.Class == chart.ClassLocationTick && sh.Highlighted {
			t.Error("previous location still highlighted")
		}
		if chart.IsDataClass(sh.Class) && !sh.Dimmed {
			t.Errorf("%s should now be dimmed", sh.ID)
		}
	}
}

func TestClickLegend_DimsOtherMarkersOnly(t *testing.T) {
	ctl := newTestController(t)
	if _, err := ctl.ClickLegend(model.CategoryRetirement); err != nil {
		t.Fatalf("ClickLegend: %v", err)
	}
	for _, sh := range ctl.Chart().Scene().Shapes {
		switch sh.Class {
		case chart.ClassRangeStart, chart.ClassRangeEnd:
			if !sh.Dimmed {
				t.Errorf("%s should be dimmed", sh.ID)
			}
		case chart.ClassRetirement, chart.ClassRangeBar, chart.ClassHealthyText, chart.ClassLifeText, chart.ClassRowLine:
			if sh.Dimmed {
				t.Errorf("%s should not be dimmed", sh.ID)
			}
		case chart.ClassLegendItem, chart.ClassLegendLabel:
			selected := sh.Key == string(model.CategoryRetirement)
			if sh.Highlighted != selected || sh.Dimmed == selected {
				t.Errorf("%s highlighted=%v dimmed=%v", sh.ID, sh.Highlighted, sh.Dimmed)
			}
		}
	}
	_, _ = ctl.ClickLegend(model.CategoryRetirement)
	assertNothingDimmed(t, ctl)
}

func TestClickLegend_ThenLocationSwitchesKind(t *testing.T) {
	ctl := newTestController(t)
	_, _ = ctl.ClickLegend(model.CategoryHealthy)
	_, _ = ctl.ClickLocation("Japan")
	if ctl.Selection() != model.LocationSelection("Japan") {
		t.Fatalf("selection = %v", ctl.Selection())
	}
	for _, sh := range ctl.Chart().Scene().ByClass(chart.ClassLegendItem) {
		if sh.Dimmed || sh.Highlighted {
			t.Errorf("legend %s should be cleared", sh.ID)
		}
	}
}

func TestClickOutside_ClearsEverything(t *testing.T) {
	ctl := newTestController(t)
	_, _ = ctl.ClickLegend(model.CategoryLife)
	tr := ctl.ClickOutside()
	if tr.Event != EventClickOutside || tr.To != model.NoSelection {
		t.Errorf("transition = %v", tr)
	}
	assertNothingDimmed(t, ctl)

	// idempotent from Unselected
	if ctl.ClickOutside().Changed() {
		t.Error("click outside while unselected should not change state")
	}
}

func TestClick_DispatchesByShape(t *testing.T) {
	ctl := newTestController(t)
	tick := ctl.Chart().Scene().ByClass(chart.ClassLocationTick)[1]
	if _, err := ctl.Click(tick.ID); err != nil {
		t.Fatal(err)
	}
	if ctl.Selection() != model.LocationSelection(tick.Key) {
		t.Errorf("selection = %v", ctl.Selection())
	}

	label := ctl.Chart().Scene().ByClass(chart.ClassLegendLabel)[0]
	_, _ = ctl.Click(label.ID)
	if ctl.Selection() != model.CategorySelection(model.CategoryHealthy) {
		t.Errorf("selection = %v", ctl.Selection())
	}

	bar := ctl.Chart().Scene().ByClass(chart.ClassRangeBar)[0]
	tr, err := ctl.Click(bar.ID)
	if err != nil || tr.Changed() {
		t.Errorf("clicking a bar should be a no-op: %v %v", tr, err)
	}

	if _, err := ctl.Click("nope"); !errors.Is(err, model.ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestUnknownTargets(t *testing.T) {
	ctl := newTestController(t)
	if _, err := ctl.ClickLocation("Atlantis"); !errors.Is(err, model.ErrUnknownTarget) {
		t.Errorf("got %v", err)
	}
	if _, err := ctl.ClickLegend("bogus"); !errors.Is(err, model.ErrUnknownTarget) {
		t.Errorf("got %v", err)
	}
	if !ctl.Selection().IsNone() {
		t.Error("failed clicks must not change the selection")
	}
}

func TestHover_ShowsAndHidesTooltip(t *testing.T) {
	ctl := newTestController(t)
	before := dimmedIDs(ctl)

	var marker *chart.Shape
	for _, sh := range ctl.Chart().Scene().ByKey("Japan") {
		if sh.Class == chart.ClassRangeStart {
			marker = sh
		}
	}
	if !ctl.Hover(marker.ID, 120, 300) {
		t.Fatal("hover on marker should show tooltip")
	}
	tip := ctl.Tooltip()
	if !tip.Visible || tip.Text != "Average Healthy Life Expectancy: 74.1" {
		t.Errorf("tooltip = %+v", tip)
	}
	if tip.X != 120 || tip.Y != 300-TooltipOffsetY || tip.Opacity != TooltipShownOpacity {
		t.Errorf("tooltip position/opacity = %+v", tip)
	}
	if !ctl.Selection().IsNone() || len(dimmedIDs(ctl)) != len(before) {
		t.Error("hover must not change selection")
	}

	ctl.Leave()
	if ctl.Tooltip().Visible || ctl.Tooltip().Opacity != TooltipHiddenOpacity {
		t.Errorf("tooltip still visible after leave: %+v", ctl.Tooltip())
	}

	bar := ctl.Chart().Scene().ByClass(chart.ClassRangeBar)[0]
	if ctl.Hover(bar.ID, 0, 0) {
		t.Error("bars have no tooltip")
	}
}

func TestRefresh_AfterSortKeepsSelection(t *testing.T) {
	ctl := newTestController(t)
	_, _ = ctl.ClickLocation("Nigeria")
	want := dimmedIDs(ctl)

	ctl.Chart().SortByLocation()
	ctl.Refresh()

	got := dimmedIDs(ctl)
	if len(got) != len(want) {
		t.Fatalf("dimmed set changed after sort: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dimmed id %d: %s vs %s", i, got[i], want[i])
		}
	}
}

func TestSelectionTable_MatchesController(t *testing.T) {
	ctl := newTestController(t)
	table := SelectionTable(ctl.Chart())
	if len(table) != 4+3 {
		t.Fatalf("table has %d entries", len(table))
	}
	for _, sel := range Selectables(ctl.Chart()) {
		ctl.ClickOutside()
		switch sel.Kind {
		case model.SelectLocation:
			_, _ = ctl.ClickLocation(sel.Location)
		case model.SelectCategory:
			_, _ = ctl.ClickLegend(sel.Category)
		}
		want := dimmedIDs(ctl)
		got := append([]string(nil), table[sel.Key()].Dimmed...)
		sort.Strings(got)
		if len(got) != len(want) {
			t.Fatalf("%s: table dims %d, controller dims %d", sel, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: mismatch at %d", sel, i)
			}
		}
	}
}

func TestProperty_SelectTwiceIsIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		records := testutil.RecordsGen(1, 40).Draw(rt, "records")
		ds, _ := model.NewDataset(records)
		c, err := chart.New(chart.CompactLayout(), ds)
		if err != nil {
			rt.Fatalf("chart.New: %v", err)
		}
		ctl := NewController(c)

		// random walk of clicks
		steps := rapid.IntRange(0, 10).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				_, _ = ctl.ClickLocation(rapid.SampledFrom(ds.Locations()).Draw(rt, "loc"))
			case 1:
				_, _ = ctl.ClickLegend(rapid.SampledFrom(model.Categories).Draw(rt, "cat"))
			case 2:
				ctl.ClickOutside()
			}
		}
		loc := rapid.SampledFrom(ds.Locations()).Draw(rt, "target")
		ctl.ClickOutside()
		_, _ = ctl.ClickLocation(loc)
		for _, sh := range c.Scene().Shapes {
			if chart.IsDataClass(sh.Class) && sh.Dimmed != (sh.Key != loc) {
				rt.Fatalf("%s dimmed=%v with %s selected", sh.ID, sh.Dimmed, loc)
			}
		}
		_, _ = ctl.ClickLocation(loc)
		if len(c.Scene().DimmedIDs()) != 0 {
			rt.Fatalf("select twice left %d shapes dimmed", len(c.Scene().DimmedIDs()))
		}

		ctl.ClickOutside()
		if len(c.Scene().DimmedIDs()) != 0 || !ctl.Selection().IsNone() {
			rt.Fatalf("click outside did not fully reset")
		}
	})
}
