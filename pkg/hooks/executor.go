package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vanderheijden86/lifespan/pkg/debug"
)

// maxSummaryOutput caps how much of a failed hook's stderr the summary
// repeats.
const maxSummaryOutput = 200

// Result records one hook run.
type Result struct {
	Hook     Hook
	Phase    Phase
	Success  bool
	Stdout   string
	Stderr   string
	Error    error
	Duration time.Duration
}

// Executor runs the hooks of one export and keeps their results.
type Executor struct {
	phases  Phases
	export  ExportContext
	results []Result
}

// NewExecutor creates an executor. phases should already be normalized.
func NewExecutor(phases Phases, export ExportContext) *Executor {
	return &Executor{phases: phases, export: export}
}

// RunPreExport runs pre-export hooks in order, stopping at the first
// failure of a hook whose policy is fail.
func (e *Executor) RunPreExport(ctx context.Context) error {
	for _, h := range e.phases.PreExport {
		r := e.run(ctx, h, PreExport)
		if !r.Success && h.OnError != OnErrorContinue {
			return fmt.Errorf("pre-export hook %s: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook and returns the failures of
// hooks whose policy is fail.
func (e *Executor) RunPostExport(ctx context.Context) error {
	var errs []error
	for _, h := range e.phases.PostExport {
		r := e.run(ctx, h, PostExport)
		if !r.Success && h.OnError == OnErrorFail {
			errs = append(errs, fmt.Errorf("post-export hook %s: %w", h.Name, r.Error))
		}
	}
	return errors.Join(errs...)
}

// Results returns every run so far, in order.
func (e *Executor) Results() []Result {
	return append([]Result(nil), e.results...)
}

// Failed reports whether any hook failed.
func (e *Executor) Failed() bool {
	for _, r := range e.results {
		if !r.Success {
			return true
		}
	}
	return false
}

func (e *Executor) run(ctx context.Context, h Hook, phase Phase) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// hook variables expand against the base environment only, so they
	// cannot see each other
	base := append(os.Environ(), e.export.ToEnv()...)
	env := slices.Clone(base)
	for _, k := range slices.Sorted(maps.Keys(h.Env)) {
		env = append(env, k+"="+os.Expand(h.Env[k], lookupIn(base)))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cctx, "sh", "-c", h.Command)
	cmd.Env = env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children of sh may hold the pipes open after sh is killed
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %v", timeout)
		}
		r.Error = err
	}
	e.results = append(e.results, r)
	debug.Log("hooks: %s %s success=%v in %v", phase, h.Name, r.Success, r.Duration)
	return r
}

// lookupIn resolves a variable against env, last definition winning.
func lookupIn(env []string) func(string) string {
	return func(name string) string {
		prefix := name + "="
		for i := len(env) - 1; i >= 0; i-- {
			if strings.HasPrefix(env[i], prefix) {
				return env[i][len(prefix):]
			}
		}
		return ""
	}
}

// Summary describes the runs: counts, then one entry per failure with the
// start of its stderr. It is empty when no hook ran.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var ok, failed int
	var sb strings.Builder
	for _, r := range e.results {
		if r.Success {
			ok++
			continue
		}
		failed++
		fmt.Fprintf(&sb, "  ✗ %s (%s): %v\n", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "    stderr: %s\n", truncate(r.Stderr, maxSummaryOutput))
		}
	}
	return fmt.Sprintf("Hooks: %d succeeded, %d failed\n", ok, failed) + sb.String()
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	suffix := "..."
	if n <= len(suffix) {
		suffix = ""
	}
	cut := n - len(suffix)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}
