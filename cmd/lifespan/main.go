package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/lifespan/internal/datasource"
	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/config"
	"github.com/vanderheijden86/lifespan/pkg/debug"
	"github.com/vanderheijden86/lifespan/pkg/export"
	"github.com/vanderheijden86/lifespan/pkg/hooks"
	"github.com/vanderheijden86/lifespan/pkg/interact"
	"github.com/vanderheijden86/lifespan/pkg/loader"
	"github.com/vanderheijden86/lifespan/pkg/metrics"
	"github.com/vanderheijden86/lifespan/pkg/model"
	"github.com/vanderheijden86/lifespan/pkg/ui"
	"github.com/vanderheijden86/lifespan/pkg/version"
	"github.com/vanderheijden86/lifespan/pkg/watcher"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// outputList collects repeatable, comma separated --output values.
type outputList []string

func (o *outputList) String() string { return strings.Join(*o, ",") }

func (o *outputList) Set(v string) error {
	*o = append(*o, v)
	return nil
}

type options struct {
	input      string
	configPath string
	variant    string
	table      string
	outputs    outputList
	sort       bool
	watch      bool
	tui        bool
	summary    bool
	wizard     bool
	noHooks    bool
	stats      bool
	version    bool
	help       bool
	cpuProfile string

	// set records which flags appeared on the command line, so only those
	// override the config file.
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("lifespan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.input, "input", "", "CSV path, http(s) URL, sqlite:path, or - for stdin")
	fs.Var(&opts.outputs, "output", "Output file; repeat or comma separate (.svg .png .html .json .md)")
	fs.StringVar(&opts.variant, "variant", "", "Chart variant: full or compact")
	fs.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/lifespan/config.yaml)")
	fs.StringVar(&opts.table, "table", "", "SQLite table to read (default records)")
	fs.BoolVar(&opts.sort, "sort", false, "Sort rows by location")
	fs.BoolVar(&opts.watch, "watch", false, "Re-render outputs when the input file changes")
	fs.BoolVar(&opts.tui, "tui", false, "Open the interactive terminal viewer")
	fs.BoolVar(&opts.summary, "summary", false, "Print a Markdown summary of the data")
	fs.BoolVar(&opts.wizard, "wizard", false, "Choose options interactively")
	fs.BoolVar(&opts.noHooks, "no-hooks", false, "Skip pre/post export hooks from the config")
	fs.BoolVar(&opts.stats, "stats", false, "Print stage timings to stderr on exit")
	fs.BoolVar(&opts.version, "version", false, "Show version")
	fs.BoolVar(&opts.help, "help", false, "Show help")
	fs.StringVar(&opts.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: lifespan --input data.csv [--output chart.svg] [options]")
		fmt.Fprintln(stderr, "\nRenders a healthy life expectancy / life expectancy / retirement age chart.")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.help {
		fs.Usage()
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// resolveConfig loads the config file and applies command-line overrides.
func resolveConfig(opts options) (config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadFrom(path); err != nil {
			return cfg, path, err
		}
	}

	if opts.set["input"] {
		cfg.Input = opts.input
	}
	if opts.set["table"] && strings.TrimSpace(opts.table) != "" {
		cfg.Table = opts.table
	}
	if opts.set["variant"] {
		cfg.Chart.Variant = opts.variant
	}
	if opts.sort {
		cfg.Chart.Sort = true
	}
	cfg.ApplyOutputs(opts.outputs)
	return cfg, path, cfg.Validate()
}

// buildChart loads the input and lays out a chart for it.
func buildChart(ctx context.Context, cfg config.Config, stdin io.Reader, stderr io.Writer) (*chart.Chart, loader.Result, error) {
	res, err := loader.Load(ctx, cfg.Input, loader.Options{
		ParseOptions: loader.ParseOptions{
			WarningHandler: func(msg string) { fmt.Fprintf(stderr, "Warning: %s\n", msg) },
		},
		Table: cfg.Table,
		Stdin: stdin,
	})
	if err != nil {
		return nil, res, err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return nil, res, err
	}
	c, err := chart.New(layout, res.Dataset)
	if err != nil {
		return nil, res, err
	}
	if cfg.Chart.Sort {
		c.SortByLocation()
	}
	return c, res, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.help {
		return 0
	}
	if opts.version {
		fmt.Fprintf(stdout, "lifespan %s\n", version.Version)
		return 0
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	cfg, cfgPath, err := resolveConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	debug.Dump("config", cfg)
	if opts.stats {
		metrics.SetEnabled(true)
		defer func() {
			fmt.Fprintln(stderr)
			_ = metrics.WriteTable(stderr, metrics.Snapshot())
		}()
	}

	if opts.wizard {
		w := export.NewWizard(cfg, stdout)
		if cfg, err = w.Run(); err != nil {
			fmt.Fprintf(stderr, "Wizard cancelled: %v\n", err)
			return 1
		}
		if w.SaveConfig {
			if err := config.SaveTo(cfg, cfgPath); err != nil {
				fmt.Fprintf(stderr, "Error saving config: %v\n", err)
				return 1
			}
			fmt.Fprintf(stdout, "Saved config to %s\n", cfgPath)
		}
	}

	if strings.TrimSpace(cfg.Input) == "" {
		fmt.Fprintln(stderr, "Error: no input; pass --input or set input in the config file")
		return 2
	}
	if opts.tui && cfg.Input == "-" {
		fmt.Fprintln(stderr, "Error: --tui cannot read data from stdin")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, res, err := buildChart(ctx, cfg, stdin, stderr)
	if err != nil {
		reportLoadError(stderr, err)
		return 1
	}
	if opts.watch && !res.Source.IsLocal() {
		fmt.Fprintf(stderr, "Error: --watch needs a local file, got %s input\n", res.Source.Type)
		return 2
	}

	if opts.summary {
		if err := printSummary(stdout, c.Dataset()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	// --summary and --tui only write files when --output asks for them.
	writeFiles := opts.set["output"] || !(opts.summary || opts.tui)
	if writeFiles {
		if err := writeOutputs(ctx, c, cfg, !opts.noHooks, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	switch {
	case opts.tui:
		if err := runTUI(ctx, c, cfg, res.Source, opts.watch, stdin); err != nil {
			fmt.Fprintf(stderr, "Error running lifespan viewer: %v\n", err)
			return 1
		}
	case opts.watch:
		if err := watchLoop(ctx, cfg, res.Source, !opts.noHooks, stdin, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func reportLoadError(stderr io.Writer, err error) {
	var le *model.LoadError
	if errors.As(err, &le) {
		fmt.Fprintf(stderr, "Error loading data from %s: %v\n", le.Source, le.Err)
		return
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}

// writeOutputs renders every configured output, wrapped in the configured
// hooks when runHooks is set. A failing pre-export hook stops the export.
func writeOutputs(ctx context.Context, c *chart.Chart, cfg config.Config, runHooks bool, stdout, stderr io.Writer) error {
	defer debug.LogEnterExit("writeOutputs")()
	var ex *hooks.Executor
	if runHooks && !cfg.Hooks.Empty() {
		phases, warnings := cfg.Hooks.Normalize()
		for _, w := range warnings {
			fmt.Fprintf(stderr, "Warning: %s\n", w)
		}
		ex = hooks.NewExecutor(phases, hooks.ExportContext{
			Input:       cfg.Input,
			Outputs:     cfg.Outputs,
			RecordCount: c.Dataset().Len(),
			Timestamp:   time.Now(),
		})
		defer func() {
			if ex.Failed() || debug.Enabled() {
				fmt.Fprint(stderr, ex.Summary())
			}
		}()

		stop := metrics.Timer(metrics.Hooks)
		err := ex.RunPreExport(ctx)
		stop()
		if err != nil {
			return err
		}
	}

	if err := export.SaveAll(ctx, c, "", cfg.Outputs); err != nil {
		return err
	}
	for _, p := range cfg.Outputs {
		fmt.Fprintf(stdout, "Wrote %s\n", p)
	}

	if ex != nil {
		defer metrics.Timer(metrics.Hooks)()
		return ex.RunPostExport(ctx)
	}
	return nil
}

func printSummary(stdout io.Writer, ds model.Dataset) error {
	md := export.GenerateMarkdown(ds, export.DefaultTitle)
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			width = 100
		}
		rendered, err := export.RenderMarkdown(md, width)
		if err == nil {
			md = rendered
		}
	}
	_, err := io.WriteString(stdout, md)
	return err
}

func newWatcher(cfg config.Config, src datasource.DataSource, onError func(error)) (*watcher.Watcher, error) {
	return watcher.New(src.Path,
		watcher.WithDebounceDuration(cfg.Watch.Debounce),
		watcher.WithPollInterval(cfg.Watch.PollInterval),
		watcher.WithForcePoll(cfg.Watch.ForcePoll),
		watcher.WithOnError(onError),
	)
}

// watchLoop re-renders every output after each change until ctx ends.
// Load failures are reported and the previous outputs are left in place.
func watchLoop(ctx context.Context, cfg config.Config, src datasource.DataSource, runHooks bool, stdin io.Reader, stdout, stderr io.Writer) error {
	w, err := newWatcher(cfg, src, func(err error) {
		fmt.Fprintf(stderr, "Watch: %v\n", err)
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()
	fmt.Fprintf(stdout, "Watching %s (Ctrl+C to stop)\n", src.Path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
		}
		c, _, err := buildChart(ctx, cfg, stdin, stderr)
		if err != nil {
			reportLoadError(stderr, err)
			continue
		}
		if err := writeOutputs(ctx, c, cfg, runHooks, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}
}

func runTUI(ctx context.Context, c *chart.Chart, cfg config.Config, src datasource.DataSource, watch bool, stdin io.Reader) error {
	var opts []ui.Option
	if watch {
		w, err := newWatcher(cfg, src, func(error) {})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
		opts = append(opts, ui.WithWatcher(w, func() (*chart.Chart, error) {
			// warnings would scribble over the alt screen
			c, _, err := buildChart(ctx, cfg, stdin, io.Discard)
			return c, err
		}))
	}
	return runTUIProgram(ui.NewModel(interact.NewController(c), opts...))
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests.
	if v := os.Getenv("LIFESPAN_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
