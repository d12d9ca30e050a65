package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/model"
)

// Colors adapt to light and dark terminals. The chart's dark navy for life
// expectancy is unreadable on a dark background, so dark mode lightens it.
var (
	ColorText       = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorMuted      = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#44475A"}
	ColorSubtext    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorPrimary    = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorDanger     = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorHealthy    = lipgloss.AdaptiveColor{Light: "#1F8FD6", Dark: "#66C2FF"}
	ColorLife       = lipgloss.AdaptiveColor{Light: "#001449", Dark: "#8FA8FF"}
	ColorRetirement = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorBar        = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#6272A4"}
	ColorGrid       = lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#363949"}
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	AxisStyle     = lipgloss.NewStyle().Foreground(ColorSubtext)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorText)
	DimmedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	CursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	TooltipStyle  = lipgloss.NewStyle().Foreground(ColorText).Background(lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}).Padding(0, 1)
	StatusStyle   = lipgloss.NewStyle().Foreground(ColorSubtext)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
	GridStyle     = lipgloss.NewStyle().Foreground(ColorGrid)
	BarStyle      = lipgloss.NewStyle().Foreground(ColorBar)
	selectedStyle = lipgloss.NewStyle().Bold(true)
)

// classStyle is the base style for a shape class.
func classStyle(class string) lipgloss.Style {
	switch class {
	case string(model.CategoryHealthy):
		return lipgloss.NewStyle().Foreground(ColorHealthy)
	case string(model.CategoryLife):
		return lipgloss.NewStyle().Foreground(ColorLife)
	case string(model.CategoryRetirement):
		return lipgloss.NewStyle().Foreground(ColorRetirement)
	case chart.ClassRangeBar:
		return BarStyle
	case chart.ClassVerticalLine:
		return GridStyle
	}
	return LabelStyle
}

// shapeStyle applies a shape's interaction flags on top of base. A nil
// shape gets base unchanged.
func shapeStyle(base lipgloss.Style, sh *chart.Shape) lipgloss.Style {
	switch {
	case sh == nil:
		return base
	case sh.Dimmed:
		return DimmedStyle
	case sh.Bold || sh.Highlighted:
		return base.Bold(true).Underline(sh.Class == chart.ClassLocationTick)
	}
	return base
}
