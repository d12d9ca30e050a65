package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/lifespan/internal/datasource"
	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/config"
)

// Wizard interactively collects chart options for --wizard. It starts
// from an existing config so previously saved answers become defaults.
type Wizard struct {
	cfg config.Config
	out io.Writer
	// SaveConfig records whether the user asked to persist the answers.
	SaveConfig bool
}

// NewWizard creates a wizard seeded with cfg.
func NewWizard(cfg config.Config, out io.Writer) *Wizard {
	if out == nil {
		out = os.Stdout
	}
	return &Wizard{cfg: cfg, out: out}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run executes the interactive flow and returns the resulting config.
func (w *Wizard) Run() (config.Config, error) {
	fmt.Fprintln(w.out, "lifespan chart wizard (Ctrl+C to cancel)")
	fmt.Fprintln(w.out, "────────────────────────────────────────")

	input := w.cfg.Input
	table := w.cfg.Table
	variant := w.cfg.Chart.Variant
	if variant == "" {
		variant = chart.VariantFull
	}
	outputs := strings.Join(w.cfg.Outputs, ", ")
	sortRows := w.cfg.Chart.Sort

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Input").
				Description("CSV path, http(s) URL, or sqlite:path").
				Value(&input).
				Validate(ValidateInput),
			huh.NewSelect[string]().
				Title("Chart variant").
				Options(
					huh.NewOption("Full (1000x3000, wide labels)", chart.VariantFull),
					huh.NewOption("Compact (800x2800)", chart.VariantCompact),
				).
				Value(&variant),
			huh.NewInput().
				Title("Outputs").
				Description("Comma separated; format from extension (.svg .png .html .json .md)").
				Value(&outputs).
				Validate(ValidateOutputs),
			huh.NewConfirm().
				Title("Sort rows by location?").
				Value(&sortRows),
			huh.NewConfirm().
				Title("Save these answers to the config file?").
				Value(&w.SaveConfig),
		),
	)
	if err := form.Run(); err != nil {
		return w.cfg, err
	}

	// SQLite inputs ask for their table in a second step.
	if src, err := datasource.Detect(input, table); err == nil && src.Type == datasource.SourceTypeSQLite {
		tform := newForm(huh.NewGroup(
			huh.NewInput().
				Title("SQLite table").
				Value(&table).
				Placeholder(config.DefaultTable),
		))
		if err := tform.Run(); err != nil {
			return w.cfg, err
		}
	}

	return w.apply(input, table, variant, outputs, sortRows), nil
}

func (w *Wizard) apply(input, table, variant, outputs string, sortRows bool) config.Config {
	cfg := w.cfg
	cfg.Input = strings.TrimSpace(input)
	if strings.TrimSpace(table) != "" {
		cfg.Table = strings.TrimSpace(table)
	}
	cfg.Chart.Variant = variant
	cfg.Chart.Sort = sortRows
	cfg.ApplyOutputs([]string{outputs})
	return cfg
}

// ValidateInput rejects inputs Detect cannot resolve.
func ValidateInput(s string) error {
	_, err := datasource.Detect(s, config.DefaultTable)
	return err
}

// ValidateOutputs rejects an empty list or any path with an unknown format.
func ValidateOutputs(s string) error {
	n := 0
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := FormatFor(p, ""); err != nil {
			return err
		}
		n++
	}
	if n == 0 {
		return fmt.Errorf("at least one output is required")
	}
	return nil
}
