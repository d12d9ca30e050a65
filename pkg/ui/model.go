// Package ui is the terminal viewer: a bubbletea program that draws the
// chart as one ASCII dumbbell per location and drives the same interaction
// controller as the exported HTML page.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/debug"
	"github.com/vanderheijden86/lifespan/pkg/interact"
	"github.com/vanderheijden86/lifespan/pkg/model"
	"github.com/vanderheijden86/lifespan/pkg/watcher"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	maxLabelWidth = 28
	minPlotWidth  = 10
	headerHeight  = 3 // title, legend, axis
	footerHeight  = 1 // tooltip or status
)

// FileChangedMsg is sent when the watched input changes.
type FileChangedMsg struct{}

// ReloadedMsg carries the result of rebuilding the chart after a change.
type ReloadedMsg struct {
	Chart *chart.Chart
	Err   error
}

// ReadyTimeoutMsg fires when no window size arrived in time.
type ReadyTimeoutMsg struct{}

// ReloadFunc rebuilds the chart from its input.
type ReloadFunc func() (*chart.Chart, error)

// WatchFileCmd waits for the next change and reports it.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReadyTimeoutCmd keeps the viewer from waiting forever on terminals that
// are slow to report their size.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the header line.
func WithTitle(title string) Option {
	return func(m *Model) {
		m.title = title
	}
}

// WithWatcher reloads the chart with reload whenever w reports a change.
// The selection resets on every reload.
func WithWatcher(w *watcher.Watcher, reload ReloadFunc) Option {
	return func(m *Model) {
		m.watcher = w
		m.reload = reload
	}
}

// Model is the viewer state. The controller is shared between copies of
// the model, as bubbletea passes Model by value.
type Model struct {
	ctl   *interact.Controller
	keys  keyMap
	help  help.Model
	title string

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	cursor int
	// marker indexes model.Categories for the hovered marker on the cursor
	// row, or -1.
	marker int
	// sorted is set once the user sorts; reloaded charts are sorted too.
	sorted bool

	statusMsg     string
	statusIsError bool

	watcher *watcher.Watcher
	reload  ReloadFunc
}

// NewModel creates a viewer over a controller.
func NewModel(ctl *interact.Controller, opts ...Option) Model {
	m := Model{
		ctl:      ctl,
		keys:     defaultKeyMap(),
		help:     help.New(),
		title:    "Healthy Life Expectancy, Life Expectancy and Retirement Age",
		viewport: viewport.New(defaultWidth, defaultHeight-headerHeight-footerHeight-1),
		marker:   -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Controller returns the interaction controller being driven.
func (m Model) Controller() *interact.Controller { return m.ctl }

// Cursor returns the index of the highlighted row.
func (m Model) Cursor() int { return m.cursor }

// Status returns the current status line text.
func (m Model) Status() string { return m.statusMsg }

// CurrentLocation returns the location under the cursor.
func (m Model) CurrentLocation() string {
	ds := m.ctl.Chart().Dataset()
	if m.cursor < 0 || m.cursor >= ds.Len() {
		return ""
	}
	return ds.At(m.cursor).Location
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case ReadyTimeoutMsg:
		if !m.ready {
			m.resize(defaultWidth, defaultHeight)
		}
		return m, nil

	case FileChangedMsg:
		var cmds []tea.Cmd
		if m.reload != nil {
			reload := m.reload
			cmds = append(cmds, func() tea.Msg {
				c, err := reload()
				return ReloadedMsg{Chart: c, Err: err}
			})
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case ReloadedMsg:
		m.applyReload(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.ctl.Chart().Dataset().Len()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return *m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.moveCursor(m.cursor - 1)
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < rows-1 {
			m.moveCursor(m.cursor + 1)
		}

	case key.Matches(msg, m.keys.Next):
		m.hoverMarker((m.marker + 1) % len(model.Categories))
	case key.Matches(msg, m.keys.Prev):
		if m.marker <= 0 {
			m.hoverMarker(len(model.Categories) - 1)
		} else {
			m.hoverMarker(m.marker - 1)
		}

	case key.Matches(msg, m.keys.Toggle):
		if loc := m.CurrentLocation(); loc != "" {
			m.recordTransition(m.ctl.ClickLocation(loc))
		}
	case key.Matches(msg, m.keys.Healthy):
		m.recordTransition(m.ctl.ClickLegend(model.CategoryHealthy))
	case key.Matches(msg, m.keys.Life):
		m.recordTransition(m.ctl.ClickLegend(model.CategoryLife))
	case key.Matches(msg, m.keys.Retirement):
		m.recordTransition(m.ctl.ClickLegend(model.CategoryRetirement))
	case key.Matches(msg, m.keys.Clear):
		m.ctl.Leave()
		m.marker = -1
		m.recordTransition(m.ctl.ClickOutside(), nil)

	case key.Matches(msg, m.keys.Sort):
		m.sortRows()

	case key.Matches(msg, m.keys.Copy):
		m.copyTooltip()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return *m, nil
	}

	m.refreshContent()
	return *m, nil
}

func (m *Model) moveCursor(to int) {
	m.cursor = to
	if m.marker >= 0 {
		m.hoverMarker(m.marker)
	}
	m.statusMsg = ""
}

// hoverMarker shows the tooltip of the idx'th marker on the cursor row.
func (m *Model) hoverMarker(idx int) {
	loc := m.CurrentLocation()
	if loc == "" {
		return
	}
	class := string(model.Categories[idx])
	for _, sh := range m.ctl.Chart().Scene().ByKey(loc) {
		if sh.Class == class && m.ctl.Hover(sh.ID, sh.X, sh.Y) {
			m.marker = idx
			return
		}
	}
}

func (m *Model) recordTransition(t interact.Transition, err error) {
	if err != nil {
		m.statusMsg = fmt.Sprintf("❌ %v", err)
		m.statusIsError = true
		return
	}
	m.statusIsError = false
	if t.To.IsNone() {
		m.statusMsg = "Selection cleared"
	} else {
		m.statusMsg = "Selected " + describeSelection(t.To)
	}
}

func describeSelection(sel model.Selection) string {
	if sel.Kind == model.SelectCategory {
		return sel.Category.Label()
	}
	return sel.Location
}

// sortRows reorders the chart alphabetically, keeping the cursor on the
// same location.
func (m *Model) sortRows() {
	loc := m.CurrentLocation()
	c := m.ctl.Chart()
	c.SortByLocation()
	m.sorted = true
	m.ctl.Refresh()
	for i, l := range c.Dataset().Locations() {
		if l == loc {
			m.cursor = i
		}
	}
	if m.marker >= 0 {
		m.hoverMarker(m.marker)
	}
	m.statusMsg = "Sorted by location"
	m.statusIsError = false
}

func (m *Model) copyTooltip() {
	tip := m.ctl.Tooltip()
	if !tip.Visible {
		m.statusMsg = "Nothing to copy: hover a marker with ←/→ first"
		m.statusIsError = true
		return
	}
	text := m.CurrentLocation() + ": " + tip.Text
	if err := copyToClipboard(text); err != nil {
		m.statusMsg = fmt.Sprintf("❌ Clipboard error: %v", err)
		m.statusIsError = true
		return
	}
	m.statusMsg = fmt.Sprintf("📋 Copied %q to clipboard", text)
	m.statusIsError = false
}

func (m *Model) applyReload(msg ReloadedMsg) {
	if msg.Err != nil {
		m.statusMsg = fmt.Sprintf("❌ Reload failed: %v", msg.Err)
		m.statusIsError = true
		return
	}
	if m.sorted {
		msg.Chart.SortByLocation()
	}
	m.ctl = interact.NewController(msg.Chart)
	m.marker = -1
	if n := msg.Chart.Dataset().Len(); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	m.statusMsg = fmt.Sprintf("Reloaded %d locations", msg.Chart.Dataset().Len())
	m.statusIsError = false
	debug.Log("ui: reloaded chart with %d rows", msg.Chart.Dataset().Len())
	m.refreshContent()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	bodyHeight := max(1, height-headerHeight-footerHeight-helpHeight)
	m.viewport.Width = width
	m.viewport.Height = bodyHeight
	m.ready = true
	m.refreshContent()
}

// columns splits the width into label, plot and value areas.
func (m Model) columns() (label, plot int) {
	const fixed = 2 + 1 + 1 + valueWidth // cursor, two gaps, values
	label = min(maxLabelWidth, max(8, m.width/4))
	plot = max(minPlotWidth, m.width-fixed-label)
	return label, plot
}

// valueWidth fits "100.0–100.0 r100.0".
const valueWidth = 19

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	c := m.ctl.Chart()
	labelW, plotW := m.columns()
	layout := c.Layout()
	ticks := c.Ticks()

	rows := make([]string, 0, c.Dataset().Len())
	for i, r := range c.Dataset().Records() {
		shapes := make(map[string]*chart.Shape)
		for _, sh := range c.Scene().ByKey(r.Location) {
			shapes[sh.Class] = sh
		}

		cursor := "  "
		if i == m.cursor {
			cursor = CursorStyle.Render("▸ ")
		}
		label := padRight(truncate(r.Location, labelW), labelW)
		label = shapeStyle(LabelStyle, shapes[chart.ClassLocationTick]).Render(label)
		plot := renderStyledPlot(r, layout, ticks, plotW, shapes)
		values := fmt.Sprintf("%s–%s r%s",
			model.FormatAge(r.HealthyLifeExpectancy), model.FormatAge(r.LifeExpectancy), model.FormatAge(r.RetirementAge))
		values = shapeStyle(AxisStyle, shapes[chart.ClassHealthyText]).Render(values)

		rows = append(rows, cursor+label+" "+plot+" "+values)
	}
	m.viewport.SetContent(strings.Join(rows, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading chart..."
	}
	c := m.ctl.Chart()
	labelW, plotW := m.columns()

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(truncate(m.title, m.width)))
	sb.WriteString("\n")
	sb.WriteString(renderLegend(c.Scene()))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", 2+labelW+1))
	sb.WriteString(AxisStyle.Render(RenderAxis(c.Layout(), c.Ticks(), plotW)))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.footer())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Model) footer() string {
	if tip := m.ctl.Tooltip(); tip.Visible {
		return TooltipStyle.Render(truncate(m.CurrentLocation()+" · "+tip.Text, max(1, m.width-2)))
	}
	if m.statusMsg != "" {
		if m.statusIsError {
			return ErrorStyle.Render(m.statusMsg)
		}
		return StatusStyle.Render(m.statusMsg)
	}
	sel := m.ctl.Selection()
	if sel.IsNone() {
		return StatusStyle.Render(fmt.Sprintf("%d locations", m.ctl.Chart().Dataset().Len()))
	}
	return StatusStyle.Render("Selected " + describeSelection(sel))
}
