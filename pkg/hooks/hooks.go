// Package hooks runs user commands around chart export. Hooks are set in
// the config file under "hooks" and run at two points: pre-export, before
// any output is written, and post-export, after every output is written.
//
//	hooks:
//	  pre-export:
//	    - command: ./fetch-latest.sh
//	  post-export:
//	    - name: publish
//	      command: rsync $LIFESPAN_OUTPUT host:/var/www/
//	      timeout: 1m
package hooks

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase is when a hook runs.
type Phase string

const (
	// PreExport hooks run before rendering; a failure cancels the export
	// unless the hook says on_error: continue.
	PreExport Phase = "pre-export"
	// PostExport hooks run after every output is written. Failures are
	// reported but only fail the run when the hook says on_error: fail.
	PostExport Phase = "post-export"
)

// On-error policies.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout bounds a hook without its own timeout.
const DefaultTimeout = 30 * time.Second

// Hook is one shell command.
type Hook struct {
	Name    string            `yaml:"name,omitempty"`
	Command string            `yaml:"command"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty"`
}

// Phases groups hooks by when they run.
type Phases struct {
	PreExport  []Hook `yaml:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty"`
}

// Empty reports whether no hooks are configured.
func (p Phases) Empty() bool {
	return len(p.PreExport) == 0 && len(p.PostExport) == 0
}

// Get returns the hooks of one phase.
func (p Phases) Get(phase Phase) []Hook {
	switch phase {
	case PreExport:
		return p.PreExport
	case PostExport:
		return p.PostExport
	}
	return nil
}

// Validate rejects unknown on_error policies and negative timeouts.
func (p Phases) Validate() error {
	for _, phase := range []Phase{PreExport, PostExport} {
		for i, h := range p.Get(phase) {
			switch h.OnError {
			case "", OnErrorFail, OnErrorContinue:
			default:
				return fmt.Errorf("%s hook %d: on_error must be %q or %q, got %q", phase, i+1, OnErrorFail, OnErrorContinue, h.OnError)
			}
			if h.Timeout < 0 {
				return fmt.Errorf("%s hook %d: timeout must not be negative", phase, i+1)
			}
		}
	}
	return nil
}

// Normalize fills defaults (name, timeout, on_error) and drops hooks with
// an empty command, returning a warning for each one dropped.
func (p Phases) Normalize() (Phases, []string) {
	var warnings []string
	p.PreExport, warnings = normalize(p.PreExport, PreExport, warnings)
	p.PostExport, warnings = normalize(p.PostExport, PostExport, warnings)
	return p, warnings
}

func normalize(hooks []Hook, phase Phase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i, h := range hooks {
		if strings.TrimSpace(h.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has an empty command; skipping", phase, i+1))
			continue
		}
		if h.Timeout == 0 {
			h.Timeout = DefaultTimeout
		}
		if h.OnError == "" {
			if phase == PreExport {
				h.OnError = OnErrorFail
			} else {
				h.OnError = OnErrorContinue
			}
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, h)
	}
	return out, warnings
}

// hookYAML mirrors Hook with a textual timeout.
type hookYAML struct {
	Name    string            `yaml:"name,omitempty"`
	Command string            `yaml:"command"`
	Timeout string            `yaml:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty"`
}

// UnmarshalYAML accepts a duration ("45s", "2m") or a bare number of
// seconds for timeout.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	var dto hookYAML
	if err := node.Decode(&dto); err != nil {
		return err
	}
	*h = Hook{Name: dto.Name, Command: dto.Command, Env: dto.Env, OnError: dto.OnError}

	if dto.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(dto.Timeout)
	if err != nil {
		var seconds float64
		if _, scanErr := fmt.Sscanf(dto.Timeout, "%f", &seconds); scanErr != nil {
			return fmt.Errorf("invalid timeout %q: %w", dto.Timeout, err)
		}
		d = time.Duration(seconds * float64(time.Second))
	}
	h.Timeout = d
	return nil
}

// MarshalYAML writes timeout as a duration string so it reads back.
func (h Hook) MarshalYAML() (any, error) {
	dto := hookYAML{Name: h.Name, Command: h.Command, Env: h.Env, OnError: h.OnError}
	if h.Timeout != 0 {
		dto.Timeout = h.Timeout.String()
	}
	return dto, nil
}

// ExportContext describes the export to hooks through environment
// variables.
type ExportContext struct {
	Input       string
	Outputs     []string
	RecordCount int
	Timestamp   time.Time
}

// ToEnv returns the LIFESPAN_* variables for the export.
func (c ExportContext) ToEnv() []string {
	first := ""
	if len(c.Outputs) > 0 {
		first = c.Outputs[0]
	}
	return []string{
		"LIFESPAN_INPUT=" + c.Input,
		"LIFESPAN_OUTPUT=" + first,
		"LIFESPAN_OUTPUTS=" + strings.Join(c.Outputs, ","),
		fmt.Sprintf("LIFESPAN_RECORD_COUNT=%d", c.RecordCount),
		"LIFESPAN_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}
